package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/pipewriter/reflection"
)

// Parameter is a named shader parameter with its mapped semantic type.
// Parameters are immutable once classified.
type Parameter struct {
	// Name is the parameter's variable name as written in the shader.
	Name string

	// Type is the parameter's mapped semantic type.
	Type SemanticType
}

// ResourceBinding is a parameter occupying a descriptor slot, identified by
// its (set, binding) coordinates.
type ResourceBinding struct {
	Parameter

	// Set is the descriptor set index.
	Set uint32

	// Binding is the binding index within the set.
	Binding uint32

	// InputAttachmentIndex is the subpass input attachment index for
	// image-typed subpass inputs. Nil for everything else.
	InputAttachmentIndex *uint32
}

// ShaderInterface is the fully classified result for one shader stage:
// ordered vertex inputs, ordered resource bindings (deduplicated and sorted by
// binding index), and ordered push constant fields. It is built once from one
// reflection unit and never mutated afterwards.
type ShaderInterface struct {
	// Stage is the pipeline stage this interface belongs to.
	Stage reflection.Stage

	// Path is the shader source path, carried for diagnostics.
	Path string

	// VaryingInputs are the per-vertex input parameters in declaration order.
	VaryingInputs []Parameter

	// ResourceBindings are the stage's descriptor slot bindings, deduplicated
	// and sorted ascending by binding index.
	ResourceBindings []ResourceBinding

	// PushConstants are the stage's push constant fields in declaration order.
	PushConstants []Parameter
}

// Classify walks one shader unit's entry-point-scope and program-scope
// parameters and buckets each into varying inputs, push constants, or
// resource bindings, then deduplicates the binding list. The unit must expose
// exactly one entry point.
//
// Any unmappable type or unrecognized category aborts classification with an
// error naming the shader path and parameter; there is no partial result.
//
// Parameters:
//   - unit: the shader reflection unit to classify
//
// Returns:
//   - *ShaderInterface: the classified shader interface
//   - error: non-nil if the unit cannot be fully represented
func Classify(unit reflection.ShaderUnit) (*ShaderInterface, error) {
	if unit.EntryPointCount() != 1 {
		return nil, &MultipleEntryPointsError{
			Path:  unit.Path(),
			Count: unit.EntryPointCount(),
		}
	}

	si := &ShaderInterface{
		Stage: unit.EntryPointAt(0).Stage(),
		Path:  unit.Path(),
	}

	for i := 0; i < unit.ParameterCount(); i++ {
		if err := si.classifyParameter(unit.ParameterAt(i)); err != nil {
			return nil, err
		}
	}
	for i := 0; i < unit.GlobalParameterCount(); i++ {
		if err := si.classifyParameter(unit.GlobalParameterAt(i)); err != nil {
			return nil, err
		}
	}

	si.ResourceBindings = Dedupe(si.ResourceBindings)
	return si, nil
}

// classifyParameter buckets a single reflected parameter by its category.
// Parameters are appended in provider order; ordering of resource bindings
// happens afterwards in Dedupe.
//
// Parameters:
//   - p: the reflected parameter to classify
//
// Returns:
//   - error: non-nil if the parameter's type or category is unsupported
func (si *ShaderInterface) classifyParameter(p reflection.ParamLayout) error {
	switch p.Category() {
	case reflection.CategoryVaryingInput:
		paramType, err := MapType(p.Type())
		if err != nil {
			return si.locate(p, err)
		}
		si.VaryingInputs = append(si.VaryingInputs, Parameter{
			Name: p.VarName(),
			Type: paramType,
		})
		return nil

	case reflection.CategoryPushConstantBuffer:
		paramType, err := MapType(p.Type())
		if err != nil {
			return si.locate(p, err)
		}
		si.PushConstants = append(si.PushConstants, Parameter{
			Name: p.VarName(),
			Type: paramType,
		})
		return nil

	case reflection.CategoryUniform,
		reflection.CategoryDescriptorTableSlot,
		reflection.CategorySubpass:
		paramType, err := MapType(p.Type())
		if err != nil {
			return si.locate(p, err)
		}
		si.ResourceBindings = append(si.ResourceBindings, ResourceBinding{
			Parameter: Parameter{Name: p.VarName(), Type: paramType},
			Set:       p.BindingSpace(),
			Binding:   p.BindingIndex(),
		})
		return nil

	case reflection.CategoryMixed:
		return si.classifyMixed(p)

	default:
		return si.locate(p, &UnsupportedCategoryError{Category: p.Category()})
	}
}

// classifyMixed handles a parameter whose storage spans more than one binding
// category. A descriptor-table-slot sub-category supplies the (set, binding)
// coordinates; a subpass sub-category supplies the input attachment index and
// forces the semantic type to Image regardless of the raw reflected type.
//
// Parameters:
//   - p: the mixed reflected parameter to classify
//
// Returns:
//   - error: non-nil if a sub-category cannot be combined
func (si *ShaderInterface) classifyMixed(p reflection.ParamLayout) error {
	paramType, err := MapType(p.Type())
	if err != nil {
		return si.locate(p, err)
	}

	rb := ResourceBinding{
		Parameter: Parameter{Name: p.VarName(), Type: paramType},
	}

	for i := 0; i < p.SubCategoryCount(); i++ {
		switch sub := p.SubCategoryAt(i); sub {
		case reflection.CategoryDescriptorTableSlot:
			rb.Set = p.Space(sub)
			rb.Binding = p.Offset(sub)
		case reflection.CategorySubpass:
			index := p.Offset(sub)
			rb.InputAttachmentIndex = &index
			rb.Type = Image()
		default:
			return si.locate(p, &UnsupportedSubCategoryError{Category: sub})
		}
	}

	si.ResourceBindings = append(si.ResourceBindings, rb)
	return nil
}

// locate wraps a classification failure with the shader path, stage, and
// parameter name so the offending declaration can be found.
func (si *ShaderInterface) locate(p reflection.ParamLayout, err error) error {
	return fmt.Errorf("shader %q (%s stage): parameter %q: %w", si.Path, si.Stage, p.VarName(), err)
}
