package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/pipewriter/reflection"
)

// UnsupportedTypeError reports a reflected type whose shape is not in the
// closed semantic type set. It carries the type's kind and dimensions so the
// offending shader declaration can be located.
type UnsupportedTypeError struct {
	// Kind is the reflected kind that could not be mapped.
	Kind reflection.TypeKind

	// TypeName is the source-level spelling of the type.
	TypeName string

	// Elements is the vector element count, 0 for non-vectors.
	Elements int

	// Rows and Columns are the matrix dimensions, 0 for non-matrices.
	Rows, Columns int
}

func (e *UnsupportedTypeError) Error() string {
	switch e.Kind {
	case reflection.KindVector:
		return fmt.Sprintf("unsupported vector type %q with %d elements", e.TypeName, e.Elements)
	case reflection.KindMatrix:
		return fmt.Sprintf("unsupported matrix type %q with shape %dx%d", e.TypeName, e.Columns, e.Rows)
	default:
		return fmt.Sprintf("unsupported type %q of kind %s", e.TypeName, e.Kind)
	}
}

// UnsupportedCategoryError reports a reflected parameter category the
// classifier does not recognize.
type UnsupportedCategoryError struct {
	// Category is the unrecognized category.
	Category reflection.Category
}

func (e *UnsupportedCategoryError) Error() string {
	return fmt.Sprintf("unsupported parameter category %q", e.Category)
}

// UnsupportedSubCategoryError reports a constituent category of a mixed
// parameter that the classifier does not know how to combine.
type UnsupportedSubCategoryError struct {
	// Category is the unrecognized sub-category.
	Category reflection.Category
}

func (e *UnsupportedSubCategoryError) Error() string {
	return fmt.Sprintf("unsupported sub-category %q in mixed parameter", e.Category)
}

// MultipleEntryPointsError reports a shader unit exposing other than exactly
// one entry point.
type MultipleEntryPointsError struct {
	// Path is the shader source path.
	Path string

	// Count is the number of entry points the unit exposed.
	Count int
}

func (e *MultipleEntryPointsError) Error() string {
	return fmt.Sprintf("shader %q exposes %d entry points, expected exactly 1", e.Path, e.Count)
}

// StructSizeError reports a struct type whose byte size could not be computed
// because one of its fields is itself unsupported.
type StructSizeError struct {
	// StructName is the struct's source name.
	StructName string

	// FieldName is the field that failed to resolve.
	FieldName string

	// Err is the underlying mapping failure.
	Err error
}

func (e *StructSizeError) Error() string {
	return fmt.Sprintf("size of struct %q unresolved: field %q: %v", e.StructName, e.FieldName, e.Err)
}

// Unwrap returns the underlying mapping failure.
func (e *StructSizeError) Unwrap() error {
	return e.Err
}
