package binding

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/pipewriter/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapType_Vectors(t *testing.T) {
	tests := []struct {
		elements int
		want     SemanticType
		wantSize uint32
	}{
		{2, Vec2(), 8},
		{3, Vec3(), 16},
		{4, Vec4(), 16},
	}

	for _, tt := range tests {
		mapped, err := MapType(reflection.VectorType(tt.elements))
		require.NoError(t, err)
		assert.Equal(t, tt.want, mapped)
		assert.Equal(t, tt.wantSize, mapped.ByteSize())
	}
}

func TestMapType_Vec3KeepsPaddedSize(t *testing.T) {
	// Uniform and push-constant layout rules pad 3-vectors to 4-vectors, so a
	// vec3 reports a 16-byte footprint while staying a vec3 semantically.
	mapped, err := MapType(reflection.VectorType(3))
	require.NoError(t, err)
	assert.Equal(t, SemanticVec3, mapped.Kind())
	assert.Equal(t, uint32(16), mapped.ByteSize())
}

func TestMapType_Matrices(t *testing.T) {
	mat3, err := MapType(reflection.MatrixType(3, 3))
	require.NoError(t, err)
	assert.Equal(t, Mat3(), mat3)
	assert.Equal(t, uint32(48), mat3.ByteSize())

	mat4, err := MapType(reflection.MatrixType(4, 4))
	require.NoError(t, err)
	assert.Equal(t, Mat4(), mat4)
	assert.Equal(t, uint32(64), mat4.ByteSize())
}

func TestMapType_UnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		in   reflection.Type
	}{
		{"vec5", reflection.VectorType(5)},
		{"mat2x2", reflection.MatrixType(2, 2)},
		{"mat3x4", reflection.MatrixType(4, 3)},
		{"scalar", reflection.ScalarType("f32")},
		{"unknown", reflection.UnknownType("array<f32>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapType(tt.in)
			require.Error(t, err)

			var typeErr *UnsupportedTypeError
			require.ErrorAs(t, err, &typeErr)
		})
	}
}

func TestMapType_ConstantBufferUnwraps(t *testing.T) {
	wrapped := reflection.ConstantBufferType(reflection.MatrixType(4, 4))
	mapped, err := MapType(wrapped)
	require.NoError(t, err)
	assert.Equal(t, Mat4(), mapped)

	// Nested wrapping unwraps recursively.
	doubleWrapped := reflection.ConstantBufferType(wrapped)
	mapped, err = MapType(doubleWrapped)
	require.NoError(t, err)
	assert.Equal(t, Mat4(), mapped)
}

func TestMapType_Resources(t *testing.T) {
	mapped, err := MapType(reflection.ResourceType("texture_2d<f32>"))
	require.NoError(t, err)
	assert.Equal(t, SampledImage(), mapped)

	mapped, err = MapType(reflection.SamplerType())
	require.NoError(t, err)
	assert.Equal(t, SampledImage(), mapped)
}

func TestMapType_StructAlignment(t *testing.T) {
	tests := []struct {
		name   string
		fields []reflection.Field
		want   uint32
	}{
		{
			name:   "single vec4",
			fields: []reflection.Field{{Name: "a", Type: reflection.VectorType(4)}},
			want:   16,
		},
		{
			name:   "single vec2 rounds up",
			fields: []reflection.Field{{Name: "a", Type: reflection.VectorType(2)}},
			want:   16,
		},
		{
			name: "vec3 contributes padded size",
			fields: []reflection.Field{
				{Name: "a", Type: reflection.VectorType(3)},
				{Name: "b", Type: reflection.VectorType(2)},
			},
			want: 32,
		},
		{
			name: "mat4 and vec4",
			fields: []reflection.Field{
				{Name: "m", Type: reflection.MatrixType(4, 4)},
				{Name: "v", Type: reflection.VectorType(4)},
			},
			want: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped, err := MapType(reflection.StructType("S", tt.fields...))
			require.NoError(t, err)
			assert.Equal(t, SemanticStruct, mapped.Kind())
			assert.Equal(t, tt.want, mapped.ByteSize())
		})
	}
}

func TestMapType_NestedStruct(t *testing.T) {
	inner := reflection.StructType("Inner",
		reflection.Field{Name: "a", Type: reflection.VectorType(2)},
	)
	outer := reflection.StructType("Outer",
		reflection.Field{Name: "inner", Type: inner},
		reflection.Field{Name: "b", Type: reflection.VectorType(4)},
	)

	mapped, err := MapType(outer)
	require.NoError(t, err)
	// Inner rounds to 16 on its own, so the outer sum is 16 + 16.
	assert.Equal(t, uint32(32), mapped.ByteSize())
}

func TestMapType_StructSizeUnresolved(t *testing.T) {
	broken := reflection.StructType("Broken",
		reflection.Field{Name: "ok", Type: reflection.VectorType(4)},
		reflection.Field{Name: "bad", Type: reflection.ScalarType("f32")},
	)

	_, err := MapType(broken)
	require.Error(t, err)

	var sizeErr *StructSizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, "Broken", sizeErr.StructName)
	assert.Equal(t, "bad", sizeErr.FieldName)

	var typeErr *UnsupportedTypeError
	assert.True(t, errors.As(err, &typeErr), "struct size errors wrap the field's type error")
}

func TestSizeOf(t *testing.T) {
	size, err := SizeOf(reflection.VectorType(3))
	require.NoError(t, err)
	assert.Equal(t, uint32(16), size)

	_, err = SizeOf(reflection.UnknownType("atomic<u32>"))
	require.Error(t, err)
}
