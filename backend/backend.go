// Package backend adapts a built pipeline interface to the WebGPU descriptor
// types a renderer needs: bind group layout entries per set, vertex buffer
// layouts, and stage visibility flags. It only produces CPU-side descriptors;
// creating the GPU objects from them is the renderer's job.
package backend

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/pipewriter/binding"
	"github.com/Carmen-Shannon/pipewriter/pipeline"
	"github.com/Carmen-Shannon/pipewriter/reflection"
	"github.com/cogentcore/webgpu/wgpu"
)

// StageVisibility maps a pipeline stage to its wgpu shader stage flag.
//
// Parameters:
//   - stage: the stage to map
//
// Returns:
//   - wgpu.ShaderStage: the corresponding visibility flag
func StageVisibility(stage reflection.Stage) wgpu.ShaderStage {
	switch stage {
	case reflection.StageVertex:
		return wgpu.ShaderStageVertex
	case reflection.StageFragment:
		return wgpu.ShaderStageFragment
	case reflection.StageCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// Entries derives the bind group layout entries for every descriptor set of
// the pipeline, keyed by set index and sorted by binding index within each
// set. Bindings declared by more than one stage at the same (set, binding)
// coordinates are merged into a single entry with the union of their
// visibility flags, because a WebGPU layout rejects duplicate binding indices;
// the core model itself carries them independently.
//
// Parameters:
//   - p: the built pipeline interface
//
// Returns:
//   - map[int][]wgpu.BindGroupLayoutEntry: layout entries keyed by set index
//   - error: non-nil if the pipeline's set indices are not contiguously populated
func Entries(p pipeline.Interface) (map[int][]wgpu.BindGroupLayoutEntry, error) {
	// Validate set population through the core model first.
	layouts, err := p.SetLayouts()
	if err != nil {
		return nil, err
	}

	result := make(map[int][]wgpu.BindGroupLayoutEntry, len(layouts))
	for _, si := range p.Stages() {
		visibility := StageVisibility(si.Stage)
		for _, rb := range si.ResourceBindings {
			set := int(rb.Set)
			if merged := mergeVisibility(result[set], rb.Binding, visibility); merged {
				continue
			}
			result[set] = append(result[set], layoutEntry(rb, visibility))
		}
	}

	for set := range result {
		sortEntries(result[set])
	}
	return result, nil
}

// BindGroupLayoutDescriptors derives one bind group layout descriptor per
// descriptor set of the pipeline, keyed by set index.
//
// Parameters:
//   - p: the built pipeline interface
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by set index
//   - error: non-nil if the pipeline's set indices are not contiguously populated
func BindGroupLayoutDescriptors(p pipeline.Interface) (map[int]wgpu.BindGroupLayoutDescriptor, error) {
	entries, err := Entries(p)
	if err != nil {
		return nil, err
	}
	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for set, list := range entries {
		result[set] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s set %d", p.Name(), set),
			Entries: list,
		}
	}
	return result, nil
}

// VertexBufferLayout converts a vertex stage's varying inputs into a single
// interleaved vertex buffer layout. Attribute offsets advance by each type's
// byte size, so a vec3 attribute occupies its padded 16-byte footprint.
// Shader locations are assigned sequentially in declaration order.
//
// Parameters:
//   - si: the vertex stage's classified shader interface
//
// Returns:
//   - wgpu.VertexBufferLayout: the interleaved vertex buffer layout
//   - error: non-nil if an input's type has no vertex format
func VertexBufferLayout(si *binding.ShaderInterface) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(si.VaryingInputs))
	var offset uint64

	for i, input := range si.VaryingInputs {
		format, err := vertexFormat(input.Type)
		if err != nil {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("shader %q: input %q: %w", si.Path, input.Name, err)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: uint32(i),
		})
		offset += uint64(input.Type.ByteSize())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

// vertexFormat maps a semantic type to its wgpu vertex format.
func vertexFormat(t binding.SemanticType) (wgpu.VertexFormat, error) {
	switch t.Kind() {
	case binding.SemanticVec2:
		return wgpu.VertexFormatFloat32x2, nil
	case binding.SemanticVec3:
		return wgpu.VertexFormatFloat32x3, nil
	case binding.SemanticVec4:
		return wgpu.VertexFormatFloat32x4, nil
	default:
		return 0, fmt.Errorf("type %s has no vertex format", t)
	}
}

// layoutEntry builds the wgpu layout entry for one resource binding.
func layoutEntry(rb binding.ResourceBinding, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    rb.Binding,
		Visibility: visibility,
	}

	switch rb.Type.Kind() {
	case binding.SemanticSampledImage, binding.SemanticImage:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case binding.SemanticSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	default:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = uint64(rb.Type.ByteSize())
	}

	return entry
}

// mergeVisibility ORs the given visibility into an existing entry with the
// same binding index, reporting whether a merge happened.
func mergeVisibility(entries []wgpu.BindGroupLayoutEntry, bindingIndex uint32, visibility wgpu.ShaderStage) bool {
	for i := range entries {
		if entries[i].Binding == bindingIndex {
			entries[i].Visibility |= visibility
			return true
		}
	}
	return false
}

// sortEntries orders layout entries ascending by binding index.
func sortEntries(entries []wgpu.BindGroupLayoutEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Binding < entries[j].Binding
	})
}
