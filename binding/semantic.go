// Package binding synthesizes a normalized resource-binding model from shader
// reflection data: it maps reflected types into a closed semantic type set,
// classifies every parameter of a shader stage into varying inputs, push
// constants, or set-scoped resource bindings, and deduplicates redundant
// sampler bindings into a stable, binding-ordered list.
package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/pipewriter/reflection"
)

// SemanticKind identifies one variant of the closed semantic type set.
type SemanticKind int

const (
	// SemanticVec2 is a two-component float vector.
	SemanticVec2 SemanticKind = iota

	// SemanticVec3 is a three-component float vector. It occupies a padded
	// 16-byte footprint because uniform and push-constant layout rules pad
	// 3-vectors to 4-vectors.
	SemanticVec3

	// SemanticVec4 is a four-component float vector.
	SemanticVec4

	// SemanticMat3 is a 3x3 float matrix.
	SemanticMat3

	// SemanticMat4 is a 4x4 float matrix.
	SemanticMat4

	// SemanticSampledImage is a texture sampled through a combined or
	// implicit sampler, or a standalone sampler declaration.
	SemanticSampledImage

	// SemanticImage is a storage or subpass-input image accessed without
	// sampling.
	SemanticImage

	// SemanticSampler is a standalone sampler object.
	SemanticSampler

	// SemanticStruct is an aggregate whose byte size is computed from its
	// fields and rounded up to a 16-byte multiple.
	SemanticStruct
)

// String returns the semantic kind name used in diagnostics and generated code.
func (k SemanticKind) String() string {
	switch k {
	case SemanticVec2:
		return "vec2"
	case SemanticVec3:
		return "vec3"
	case SemanticVec4:
		return "vec4"
	case SemanticMat3:
		return "mat3"
	case SemanticMat4:
		return "mat4"
	case SemanticSampledImage:
		return "sampled image"
	case SemanticImage:
		return "image"
	case SemanticSampler:
		return "sampler"
	case SemanticStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// SemanticType is one member of the closed set of data shapes the binding
// model understands. It is a value type; every variant other than structs has
// a fixed byte size, and struct values carry their computed, 16-byte-aligned
// size.
type SemanticType struct {
	kind       SemanticKind
	structSize uint32
}

// Vec2 returns the two-component vector semantic type.
func Vec2() SemanticType { return SemanticType{kind: SemanticVec2} }

// Vec3 returns the three-component vector semantic type.
func Vec3() SemanticType { return SemanticType{kind: SemanticVec3} }

// Vec4 returns the four-component vector semantic type.
func Vec4() SemanticType { return SemanticType{kind: SemanticVec4} }

// Mat3 returns the 3x3 matrix semantic type.
func Mat3() SemanticType { return SemanticType{kind: SemanticMat3} }

// Mat4 returns the 4x4 matrix semantic type.
func Mat4() SemanticType { return SemanticType{kind: SemanticMat4} }

// SampledImage returns the sampled image semantic type.
func SampledImage() SemanticType { return SemanticType{kind: SemanticSampledImage} }

// Image returns the storage/subpass image semantic type.
func Image() SemanticType { return SemanticType{kind: SemanticImage} }

// Sampler returns the standalone sampler semantic type.
func Sampler() SemanticType { return SemanticType{kind: SemanticSampler} }

// StructOf returns a struct semantic type carrying the given computed byte size.
//
// Parameters:
//   - size: the struct's 16-byte-aligned byte size
//
// Returns:
//   - SemanticType: the struct semantic type
func StructOf(size uint32) SemanticType {
	return SemanticType{kind: SemanticStruct, structSize: size}
}

// Kind returns which variant of the closed set this type is.
//
// Returns:
//   - SemanticKind: the type's variant
func (t SemanticType) Kind() SemanticKind {
	return t.kind
}

// ByteSize returns the storage footprint of the type in bytes under uniform
// and push-constant layout rules. Vec3 reports its padded 16-byte footprint.
// Opaque resources (images, samplers) occupy no buffer storage and report 0.
//
// Returns:
//   - uint32: the byte size
func (t SemanticType) ByteSize() uint32 {
	switch t.kind {
	case SemanticVec2:
		return 8
	case SemanticVec3:
		return 16
	case SemanticVec4:
		return 16
	case SemanticMat3:
		return 48
	case SemanticMat4:
		return 64
	case SemanticStruct:
		return t.structSize
	default:
		return 0
	}
}

// String returns a short description of the type for diagnostics.
func (t SemanticType) String() string {
	if t.kind == SemanticStruct {
		return fmt.Sprintf("struct(%d)", t.structSize)
	}
	return t.kind.String()
}

// structAlignment is the alignment struct sizes are rounded up to, per
// uniform buffer layout rules.
const structAlignment = 16

// MapType maps a reflected type into its semantic type, computing byte sizes
// for structs along the way. It is a pure function over the reflected type
// tree; a shape outside the closed set fails with UnsupportedTypeError, and a
// struct with an unmappable field fails with StructSizeError.
//
// Parameters:
//   - t: the reflected type to map
//
// Returns:
//   - SemanticType: the mapped semantic type
//   - error: non-nil if the type's shape is not representable
func MapType(t reflection.Type) (SemanticType, error) {
	switch t.Kind() {
	case reflection.KindVector:
		switch t.ElementCount() {
		case 2:
			return Vec2(), nil
		case 3:
			return Vec3(), nil
		case 4:
			return Vec4(), nil
		default:
			return SemanticType{}, unsupported(t)
		}

	case reflection.KindMatrix:
		if t.RowCount() == 3 && t.ColumnCount() == 3 {
			return Mat3(), nil
		}
		if t.RowCount() == 4 && t.ColumnCount() == 4 {
			return Mat4(), nil
		}
		return SemanticType{}, unsupported(t)

	case reflection.KindConstantBuffer:
		return MapType(t.ElementType())

	case reflection.KindResource, reflection.KindSamplerState:
		return SampledImage(), nil

	case reflection.KindStruct:
		size, err := structSize(t)
		if err != nil {
			return SemanticType{}, err
		}
		return StructOf(size), nil

	default:
		return SemanticType{}, unsupported(t)
	}
}

// SizeOf returns the byte size a reflected type occupies under uniform and
// push-constant layout rules.
//
// Parameters:
//   - t: the reflected type to size
//
// Returns:
//   - uint32: the byte size of the mapped semantic type
//   - error: non-nil if the type's shape is not representable
func SizeOf(t reflection.Type) (uint32, error) {
	mapped, err := MapType(t)
	if err != nil {
		return 0, err
	}
	return mapped.ByteSize(), nil
}

// structSize sums the padded sizes of a struct's fields and rounds the total
// up to the next multiple of 16 bytes.
//
// Parameters:
//   - t: the struct reflected type to size
//
// Returns:
//   - uint32: the 16-byte-aligned struct size
//   - error: non-nil if a field's type could not be mapped
func structSize(t reflection.Type) (uint32, error) {
	var total uint32
	for i := 0; i < t.FieldCount(); i++ {
		field := t.FieldAt(i)
		fieldType, err := MapType(field.Type)
		if err != nil {
			return 0, &StructSizeError{
				StructName: t.TypeName(),
				FieldName:  field.Name,
				Err:        err,
			}
		}
		total += fieldType.ByteSize()
	}
	return (total + structAlignment - 1) &^ (structAlignment - 1), nil
}

// unsupported builds an UnsupportedTypeError carrying the reflected type's
// shape for diagnostics.
func unsupported(t reflection.Type) error {
	return &UnsupportedTypeError{
		Kind:     t.Kind(),
		TypeName: t.TypeName(),
		Elements: t.ElementCount(),
		Rows:     t.RowCount(),
		Columns:  t.ColumnCount(),
	}
}
