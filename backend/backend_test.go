package backend

import (
	"testing"

	"github.com/Carmen-Shannon/pipewriter/binding"
	"github.com/Carmen-Shannon/pipewriter/pipeline"
	"github.com/Carmen-Shannon/pipewriter/reflection"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rb(name string, t binding.SemanticType, set, bindingIndex uint32) binding.ResourceBinding {
	return binding.ResourceBinding{
		Parameter: binding.Parameter{Name: name, Type: t},
		Set:       set,
		Binding:   bindingIndex,
	}
}

func TestStageVisibility(t *testing.T) {
	assert.Equal(t, wgpu.ShaderStageVertex, StageVisibility(reflection.StageVertex))
	assert.Equal(t, wgpu.ShaderStageFragment, StageVisibility(reflection.StageFragment))
	assert.Equal(t, wgpu.ShaderStageCompute, StageVisibility(reflection.StageCompute))
}

func TestEntries_BufferAndTexture(t *testing.T) {
	p, err := pipeline.New("main",
		&binding.ShaderInterface{
			Stage: reflection.StageVertex,
			ResourceBindings: []binding.ResourceBinding{
				rb("model", binding.Mat4(), 0, 0),
			},
		},
		&binding.ShaderInterface{
			Stage: reflection.StageFragment,
			ResourceBindings: []binding.ResourceBinding{
				rb("albedo", binding.SampledImage(), 0, 1),
			},
		},
	)
	require.NoError(t, err)

	entries, err := Entries(p)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0], 2)

	buffer := entries[0][0]
	assert.Equal(t, uint32(0), buffer.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, buffer.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, buffer.Buffer.Type)
	assert.Equal(t, uint64(64), buffer.Buffer.MinBindingSize)

	texture := entries[0][1]
	assert.Equal(t, uint32(1), texture.Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, texture.Visibility)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, texture.Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, texture.Texture.ViewDimension)
}

func TestEntries_SamplerBinding(t *testing.T) {
	p, err := pipeline.New("main", &binding.ShaderInterface{
		Stage: reflection.StageFragment,
		ResourceBindings: []binding.ResourceBinding{
			rb("linearSampler", binding.Sampler(), 0, 0),
		},
	})
	require.NoError(t, err)

	entries, err := Entries(p)
	require.NoError(t, err)
	require.Len(t, entries[0], 1)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[0][0].Sampler.Type)
}

func TestEntries_UnionsVisibilityAcrossStages(t *testing.T) {
	// Both stages declare a binding at (0, 0); a WebGPU layout needs a single
	// entry visible to both.
	p, err := pipeline.New("main",
		&binding.ShaderInterface{
			Stage: reflection.StageVertex,
			ResourceBindings: []binding.ResourceBinding{
				rb("globals", binding.StructOf(32), 0, 0),
			},
		},
		&binding.ShaderInterface{
			Stage: reflection.StageFragment,
			ResourceBindings: []binding.ResourceBinding{
				rb("globals", binding.StructOf(32), 0, 0),
			},
		},
	)
	require.NoError(t, err)

	entries, err := Entries(p)
	require.NoError(t, err)
	require.Len(t, entries[0], 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, entries[0][0].Visibility)
}

func TestEntries_SortedPerSet(t *testing.T) {
	p, err := pipeline.New("main", &binding.ShaderInterface{
		Stage: reflection.StageFragment,
		ResourceBindings: []binding.ResourceBinding{
			rb("c", binding.Vec4(), 0, 2),
			rb("a", binding.Mat4(), 0, 0),
			rb("b", binding.SampledImage(), 0, 1),
		},
	})
	require.NoError(t, err)

	entries, err := Entries(p)
	require.NoError(t, err)
	require.Len(t, entries[0], 3)
	for i, e := range entries[0] {
		assert.Equal(t, uint32(i), e.Binding)
	}
}

func TestEntries_PropagatesEmptySetError(t *testing.T) {
	p, err := pipeline.New("gapped", &binding.ShaderInterface{
		Stage: reflection.StageVertex,
		ResourceBindings: []binding.ResourceBinding{
			rb("viewProj", binding.Mat4(), 1, 0),
		},
	})
	require.NoError(t, err)

	_, err = Entries(p)
	var setErr *pipeline.EmptyBindingSetError
	require.ErrorAs(t, err, &setErr)

	_, err = BindGroupLayoutDescriptors(p)
	require.ErrorAs(t, err, &setErr)
}

func TestBindGroupLayoutDescriptors_Labels(t *testing.T) {
	p, err := pipeline.New("textured",
		&binding.ShaderInterface{
			Stage: reflection.StageVertex,
			ResourceBindings: []binding.ResourceBinding{
				rb("model", binding.Mat4(), 0, 0),
				rb("viewProj", binding.Mat4(), 1, 0),
			},
		},
	)
	require.NoError(t, err)

	descriptors, err := BindGroupLayoutDescriptors(p)
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
	assert.Equal(t, "textured set 0", descriptors[0].Label)
	assert.Equal(t, "textured set 1", descriptors[1].Label)
	assert.Len(t, descriptors[0].Entries, 1)
	assert.Len(t, descriptors[1].Entries, 1)
}

func TestVertexBufferLayout(t *testing.T) {
	si := &binding.ShaderInterface{
		Stage: reflection.StageVertex,
		VaryingInputs: []binding.Parameter{
			{Name: "position", Type: binding.Vec3()},
			{Name: "uv", Type: binding.Vec2()},
			{Name: "color", Type: binding.Vec4()},
		},
	}

	layout, err := VertexBufferLayout(si)
	require.NoError(t, err)

	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 3)

	// vec3 advances by its padded 16-byte footprint.
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint64(16), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)

	assert.Equal(t, uint64(40), layout.ArrayStride)

	for i, attr := range layout.Attributes {
		assert.Equal(t, uint32(i), attr.ShaderLocation)
	}
}

func TestVertexBufferLayout_RejectsNonVectorInput(t *testing.T) {
	si := &binding.ShaderInterface{
		Stage: reflection.StageVertex,
		Path:  "bad.vert.wgsl",
		VaryingInputs: []binding.Parameter{
			{Name: "skin", Type: binding.Mat4()},
		},
	}

	_, err := VertexBufferLayout(si)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"skin"`)
	assert.Contains(t, err.Error(), "no vertex format")
}

func TestVertexBufferLayout_Empty(t *testing.T) {
	layout, err := VertexBufferLayout(&binding.ShaderInterface{Stage: reflection.StageVertex})
	require.NoError(t, err)
	assert.Empty(t, layout.Attributes)
	assert.Equal(t, uint64(0), layout.ArrayStride)
}
