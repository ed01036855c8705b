package reflection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedVertexSource = `
// Per-vertex data for the textured pipeline.
struct VertexInput {
    @location(0) position: vec3f,
    @location(1) uv: vec2f,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4f,
    @location(0) uv: vec2f,
}

struct CameraUniform {
    view_proj: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> camera: CameraUniform;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = camera.view_proj * vec4f(in.position, 1.0);
    out.uv = in.uv;
    return out;
}
`

const texturedFragmentSource = `
@group(1) @binding(0) var diffuseTexture: texture_2d<f32>;
@group(1) @binding(1) var diffuseSampler: sampler;

var<push_constant> tint: vec4f;

@fragment
fn fs_main(@location(0) uv: vec2f) -> @location(0) vec4f {
    return textureSample(diffuseTexture, diffuseSampler, uv) * tint;
}
`

func TestParseWGSLSource_VertexStage(t *testing.T) {
	unit := ParseWGSLSource("textured.vert.wgsl", texturedVertexSource)

	assert.Equal(t, "textured.vert.wgsl", unit.Path())

	require.Equal(t, 1, unit.EntryPointCount())
	ep := unit.EntryPointAt(0)
	assert.Equal(t, "vs_main", ep.FuncName())
	assert.Equal(t, StageVertex, ep.Stage())

	// VertexInput is a pure input struct; VertexOutput carries a @builtin
	// field and contributes nothing.
	require.Equal(t, 2, unit.ParameterCount())

	position := unit.ParameterAt(0)
	assert.Equal(t, "position", position.VarName())
	assert.Equal(t, CategoryVaryingInput, position.Category())
	assert.Equal(t, KindVector, position.Type().Kind())
	assert.Equal(t, 3, position.Type().ElementCount())

	uv := unit.ParameterAt(1)
	assert.Equal(t, "uv", uv.VarName())
	assert.Equal(t, KindVector, uv.Type().Kind())
	assert.Equal(t, 2, uv.Type().ElementCount())

	require.Equal(t, 1, unit.GlobalParameterCount())
	camera := unit.GlobalParameterAt(0)
	assert.Equal(t, "camera", camera.VarName())
	assert.Equal(t, CategoryUniform, camera.Category())
	assert.Equal(t, uint32(0), camera.BindingSpace())
	assert.Equal(t, uint32(0), camera.BindingIndex())

	require.Equal(t, KindConstantBuffer, camera.Type().Kind())
	inner := camera.Type().ElementType()
	require.Equal(t, KindStruct, inner.Kind())
	assert.Equal(t, "CameraUniform", inner.TypeName())
	require.Equal(t, 1, inner.FieldCount())
	field := inner.FieldAt(0)
	assert.Equal(t, "view_proj", field.Name)
	assert.Equal(t, KindMatrix, field.Type.Kind())
	assert.Equal(t, 4, field.Type.RowCount())
	assert.Equal(t, 4, field.Type.ColumnCount())
}

func TestParseWGSLSource_FragmentStage(t *testing.T) {
	unit := ParseWGSLSource("textured.frag.wgsl", texturedFragmentSource)

	require.Equal(t, 1, unit.EntryPointCount())
	assert.Equal(t, "fs_main", unit.EntryPointAt(0).FuncName())
	assert.Equal(t, StageFragment, unit.EntryPointAt(0).Stage())

	// No vertex entry point, so no varying inputs are reflected.
	assert.Equal(t, 0, unit.ParameterCount())

	require.Equal(t, 3, unit.GlobalParameterCount())

	texture := unit.GlobalParameterAt(0)
	assert.Equal(t, "diffuseTexture", texture.VarName())
	assert.Equal(t, CategoryDescriptorTableSlot, texture.Category())
	assert.Equal(t, uint32(1), texture.BindingSpace())
	assert.Equal(t, uint32(0), texture.BindingIndex())
	assert.Equal(t, KindResource, texture.Type().Kind())

	samplerParam := unit.GlobalParameterAt(1)
	assert.Equal(t, "diffuseSampler", samplerParam.VarName())
	assert.Equal(t, CategoryDescriptorTableSlot, samplerParam.Category())
	assert.Equal(t, uint32(1), samplerParam.BindingIndex())
	assert.Equal(t, KindSamplerState, samplerParam.Type().Kind())

	tint := unit.GlobalParameterAt(2)
	assert.Equal(t, "tint", tint.VarName())
	assert.Equal(t, CategoryPushConstantBuffer, tint.Category())
	assert.Equal(t, KindVector, tint.Type().Kind())
	assert.Equal(t, 4, tint.Type().ElementCount())
}

func TestParseWGSLSource_ComputeStage(t *testing.T) {
	source := `
@group(0) @binding(0) var<storage, read_write> data: array<f32>;

@compute @workgroup_size(64)
fn cs_main(@builtin(global_invocation_id) id: vec3u) {
    data[id.x] = data[id.x] * 2.0;
}
`
	unit := ParseWGSLSource("double.comp.wgsl", source)

	require.Equal(t, 1, unit.EntryPointCount())
	assert.Equal(t, "cs_main", unit.EntryPointAt(0).FuncName())
	assert.Equal(t, StageCompute, unit.EntryPointAt(0).Stage())

	require.Equal(t, 1, unit.GlobalParameterCount())
	data := unit.GlobalParameterAt(0)
	assert.Equal(t, CategoryDescriptorTableSlot, data.Category())

	// Runtime arrays have no mappable shape; the type comes back unknown and
	// classification rejects it later.
	assert.Equal(t, KindUnknown, data.Type().Kind())
}

func TestParseWGSLSource_MultipleEntryPoints(t *testing.T) {
	source := `
@vertex
fn vs_main() -> @builtin(position) vec4f {
    return vec4f(0.0);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return vec4f(1.0);
}
`
	unit := ParseWGSLSource("both.wgsl", source)

	// Every entry point is reflected; rejecting the unit is the classifier's
	// decision, not the parser's.
	require.Equal(t, 2, unit.EntryPointCount())
	assert.Equal(t, StageVertex, unit.EntryPointAt(0).Stage())
	assert.Equal(t, StageFragment, unit.EntryPointAt(1).Stage())
}

func TestParseWGSLSource_StripsComments(t *testing.T) {
	source := `
// struct Commented { @location(9) ghost: vec4f, }
/* @group(7) @binding(7) var<uniform> ghost: vec4f; */
/* nested /* block */ comments */
struct VertexInput {
    @location(0) position: vec3f, // trailing comment
}

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4f {
    return vec4f(in.position, 1.0);
}
`
	unit := ParseWGSLSource("commented.vert.wgsl", source)

	require.Equal(t, 1, unit.EntryPointCount())
	require.Equal(t, 1, unit.ParameterCount())
	assert.Equal(t, "position", unit.ParameterAt(0).VarName())
	assert.Equal(t, 0, unit.GlobalParameterCount())
}

func TestParseWGSLSource_NestedStructResolution(t *testing.T) {
	// Light references LightColor before it is declared; resolution iterates
	// until both settle.
	source := `
struct Light {
    color: LightColor,
    direction: vec3f,
}

struct LightColor {
    ambient: vec4f,
    diffuse: vec4f,
}

@group(0) @binding(0) var<uniform> light: Light;

@fragment
fn fs_main() -> @location(0) vec4f {
    return light.color.diffuse;
}
`
	unit := ParseWGSLSource("light.frag.wgsl", source)

	require.Equal(t, 1, unit.GlobalParameterCount())
	light := unit.GlobalParameterAt(0)
	require.Equal(t, KindConstantBuffer, light.Type().Kind())

	outer := light.Type().ElementType()
	require.Equal(t, KindStruct, outer.Kind())
	require.Equal(t, 2, outer.FieldCount())

	colorField := outer.FieldAt(0)
	assert.Equal(t, "color", colorField.Name)
	require.Equal(t, KindStruct, colorField.Type.Kind())
	assert.Equal(t, "LightColor", colorField.Type.TypeName())
	assert.Equal(t, 2, colorField.Type.FieldCount())

	directionField := outer.FieldAt(1)
	assert.Equal(t, "direction", directionField.Name)
	assert.Equal(t, KindVector, directionField.Type.Kind())
}

func TestParseWGSLSource_ArrayFieldStaysTopLevel(t *testing.T) {
	// The comma inside array<FrustumPlane, 6> must not split the field list.
	source := `
struct FrustumPlane {
    normal: vec4f,
}

struct Frustum {
    planes: array<FrustumPlane, 6>,
    center: vec4f,
}

@group(0) @binding(0) var<uniform> frustum: Frustum;

@fragment
fn fs_main() -> @location(0) vec4f {
    return frustum.center;
}
`
	unit := ParseWGSLSource("frustum.frag.wgsl", source)

	require.Equal(t, 1, unit.GlobalParameterCount())
	outer := unit.GlobalParameterAt(0).Type().ElementType()
	require.Equal(t, KindStruct, outer.Kind())
	require.Equal(t, 2, outer.FieldCount())

	planes := outer.FieldAt(0)
	assert.Equal(t, "planes", planes.Name)
	assert.Equal(t, KindUnknown, planes.Type.Kind())

	center := outer.FieldAt(1)
	assert.Equal(t, "center", center.Name)
	assert.Equal(t, KindVector, center.Type.Kind())
}

func TestParseWGSLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textured.vert.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(texturedVertexSource), 0o644))

	unit, err := ParseWGSLFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, unit.Path())
	assert.Equal(t, 1, unit.EntryPointCount())
}

func TestParseWGSLFile_Missing(t *testing.T) {
	_, err := ParseWGSLFile(filepath.Join(t.TempDir(), "nope.wgsl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read shader source")
}
