// Package pipeline merges the classified shader interfaces of a pipeline's
// stages into the normalized model a graphics backend consumes: descriptor
// set layouts, push constant ranges, and per-set bind / per-field push
// operation specifications.
package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/pipewriter/binding"
	"github.com/Carmen-Shannon/pipewriter/reflection"
)

// SetLayout is the derived layout of one descriptor set: every resource
// binding any stage declared at that set index, ordered ascending by binding
// index. Layouts are recomputed from the stages on each query, never stored.
type SetLayout struct {
	// SetIndex is the descriptor set index this layout describes.
	SetIndex uint32

	// Bindings are the set's resource bindings in binding order.
	Bindings []binding.ResourceBinding
}

// BindOperation groups every resource binding at one set index into a single
// callable unit taking one runtime argument per binding, in binding order.
type BindOperation struct {
	// SetIndex is the descriptor set the operation binds.
	SetIndex uint32

	// Bindings are the arguments of the operation, in binding order.
	Bindings []binding.ResourceBinding
}

// PushRange describes the push constant range for one push constant field.
// Every field gets its own range with offset 0; merging ranges into the
// non-overlapping form some backends require is left to the emission layer,
// and a stage declaring more than one push constant field will produce
// overlapping ranges (preserved behavior of the source model).
type PushRange struct {
	// Type is the field's semantic type; the range size is its byte size.
	Type binding.SemanticType

	// Stage is the shader stage that declared the field.
	Stage reflection.Stage

	// Offset is the byte offset of the range. Always 0.
	Offset uint32
}

// PushOperation describes a single-field raw-byte write into a push constant
// range, one per push constant field.
type PushOperation struct {
	// Name is the push constant field's variable name.
	Name string

	// Type is the field's semantic type.
	Type binding.SemanticType

	// Stage is the shader stage that declared the field.
	Stage reflection.Stage
}

// EmptyBindingSetError reports a set index that appears in the pipeline's set
// range with zero bindings. A bind operation cannot be synthesized for an
// empty set, so set indices must be populated contiguously from 0.
type EmptyBindingSetError struct {
	// Pipeline is the name of the pipeline being built.
	Pipeline string

	// Set is the empty set index.
	Set uint32
}

func (e *EmptyBindingSetError) Error() string {
	return fmt.Sprintf("pipeline %q: descriptor set %d has no bindings", e.Pipeline, e.Set)
}

// pipelineInterface is the implementation of the Interface interface.
// It owns its shader interfaces and never mutates them; every derived query
// recomputes its result from the stages.
type pipelineInterface struct {
	name   string
	stages []*binding.ShaderInterface
}

// Interface is the normalized resource-binding model of one pipeline,
// merged from the shader interfaces of all its stages. It is sufficient for a
// backend to create descriptor set layouts, a pipeline layout, and a
// binding/push API without re-deriving any classification logic.
type Interface interface {
	// Name returns the pipeline's declared name.
	//
	// Returns:
	//   - string: the pipeline name
	Name() string

	// Stages returns the pipeline's shader interfaces in stage order.
	//
	// Returns:
	//   - []*binding.ShaderInterface: the stages, vertex before fragment
	Stages() []*binding.ShaderInterface

	// Stage returns the shader interface for the given stage, or nil if the
	// pipeline has no such stage.
	//
	// Parameters:
	//   - stage: the stage to look up
	//
	// Returns:
	//   - *binding.ShaderInterface: the stage's interface or nil
	Stage(stage reflection.Stage) *binding.ShaderInterface

	// SetLayouts derives one layout per descriptor set index in use, from set
	// 0 through the highest set any stage references. A pipeline with no
	// resource bindings at all yields an empty list. A set index inside the
	// range with zero bindings fails with EmptyBindingSetError.
	//
	// Returns:
	//   - []SetLayout: the derived set layouts in ascending set order
	//   - error: non-nil if a set index in range has no bindings
	SetLayouts() ([]SetLayout, error)

	// BindOperations mirrors SetLayouts: exactly one operation per populated
	// set index, with the same binding membership and order.
	//
	// Returns:
	//   - []BindOperation: the derived bind operations in ascending set order
	//   - error: non-nil if a set index in range has no bindings
	BindOperations() ([]BindOperation, error)

	// PushRanges enumerates one range per push constant field: for each stage
	// in declared order, for each of its push constant fields in field order.
	// Ranges are not merged across stages or fields.
	//
	// Returns:
	//   - []PushRange: the derived push ranges
	PushRanges() []PushRange

	// PushOperations enumerates identically to PushRanges, producing one
	// raw-byte write specification per push constant field.
	//
	// Returns:
	//   - []PushOperation: the derived push operations
	PushOperations() []PushOperation
}

var _ Interface = &pipelineInterface{}

// New builds the pipeline interface for the given name and classified stages.
// The stage list must be non-empty, and when a pipeline has both a vertex and
// a fragment stage the vertex stage must come first.
//
// Parameters:
//   - name: the pipeline's declared name
//   - stages: the classified shader interfaces in stage order
//
// Returns:
//   - Interface: the built pipeline interface
//   - error: non-nil if the stage list is empty or misordered
func New(name string, stages ...*binding.ShaderInterface) (Interface, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline %q has no stages", name)
	}
	for i, si := range stages {
		if si == nil {
			return nil, fmt.Errorf("pipeline %q: stage %d is nil", name, i)
		}
	}
	if err := checkStageOrder(name, stages); err != nil {
		return nil, err
	}
	return &pipelineInterface{name: name, stages: stages}, nil
}

// checkStageOrder enforces the fixed vertex-before-fragment ordering and
// rejects duplicate stages.
func checkStageOrder(name string, stages []*binding.ShaderInterface) error {
	seen := make(map[reflection.Stage]bool, len(stages))
	vertexIndex, fragmentIndex := -1, -1
	for i, si := range stages {
		if seen[si.Stage] {
			return fmt.Errorf("pipeline %q declares the %s stage twice", name, si.Stage)
		}
		seen[si.Stage] = true
		switch si.Stage {
		case reflection.StageVertex:
			vertexIndex = i
		case reflection.StageFragment:
			fragmentIndex = i
		}
	}
	if vertexIndex >= 0 && fragmentIndex >= 0 && fragmentIndex < vertexIndex {
		return fmt.Errorf("pipeline %q: vertex stage must precede fragment stage", name)
	}
	return nil
}

func (p *pipelineInterface) Name() string {
	return p.name
}

func (p *pipelineInterface) Stages() []*binding.ShaderInterface {
	return p.stages
}

func (p *pipelineInterface) Stage(stage reflection.Stage) *binding.ShaderInterface {
	for _, si := range p.stages {
		if si.Stage == stage {
			return si
		}
	}
	return nil
}

func (p *pipelineInterface) SetLayouts() ([]SetLayout, error) {
	maxSet, any := p.maxSetIndex()
	if !any {
		return nil, nil
	}

	layouts := make([]SetLayout, 0, maxSet+1)
	for set := uint32(0); set <= maxSet; set++ {
		bindings := p.setBindings(set)
		if len(bindings) == 0 {
			return nil, &EmptyBindingSetError{Pipeline: p.name, Set: set}
		}
		layouts = append(layouts, SetLayout{SetIndex: set, Bindings: bindings})
	}
	return layouts, nil
}

func (p *pipelineInterface) BindOperations() ([]BindOperation, error) {
	layouts, err := p.SetLayouts()
	if err != nil {
		return nil, err
	}
	ops := make([]BindOperation, 0, len(layouts))
	for _, layout := range layouts {
		ops = append(ops, BindOperation{
			SetIndex: layout.SetIndex,
			Bindings: layout.Bindings,
		})
	}
	return ops, nil
}

func (p *pipelineInterface) PushRanges() []PushRange {
	var ranges []PushRange
	for _, si := range p.stages {
		for _, pc := range si.PushConstants {
			ranges = append(ranges, PushRange{
				Type:  pc.Type,
				Stage: si.Stage,
			})
		}
	}
	return ranges
}

func (p *pipelineInterface) PushOperations() []PushOperation {
	var ops []PushOperation
	for _, si := range p.stages {
		for _, pc := range si.PushConstants {
			ops = append(ops, PushOperation{
				Name:  pc.Name,
				Type:  pc.Type,
				Stage: si.Stage,
			})
		}
	}
	return ops
}

// maxSetIndex returns the highest set index any stage references, and whether
// any resource binding exists at all.
func (p *pipelineInterface) maxSetIndex() (uint32, bool) {
	var maxSet uint32
	found := false
	for _, si := range p.stages {
		for _, rb := range si.ResourceBindings {
			if !found || rb.Set > maxSet {
				maxSet = rb.Set
			}
			found = true
		}
	}
	return maxSet, found
}

// setBindings concatenates, in stage order, each stage's bindings at the
// given set index, then applies the deduplicator's ordering step. Bindings
// declared by different stages at identical coordinates are carried
// independently (preserved behavior of the source model; backends that need a
// unioned stage mask merge them downstream).
func (p *pipelineInterface) setBindings(set uint32) []binding.ResourceBinding {
	var bindings []binding.ResourceBinding
	for _, si := range p.stages {
		for _, rb := range si.ResourceBindings {
			if rb.Set == set {
				bindings = append(bindings, rb)
			}
		}
	}
	binding.SortByBinding(bindings)
	return bindings
}
