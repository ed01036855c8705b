// Package reflection defines the provider-neutral query surface for compiled
// shader metadata. A reflection provider (for example the WGSL source parser in
// this package) exposes one ShaderUnit per compiled shader stage; the binding
// package consumes that surface to classify parameters without knowing which
// compiler produced them.
package reflection

// Stage identifies which pipeline phase a shader unit belongs to.
type Stage int

const (
	// StageVertex is the vertex processing stage of a render pipeline.
	StageVertex Stage = iota

	// StageFragment is the fragment processing stage of a render pipeline.
	StageFragment

	// StageCompute is the compute stage of a compute pipeline.
	StageCompute
)

// String returns the lower-case name of the stage for diagnostics.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// Category describes how a reflected parameter is bound to the pipeline.
// The classifier dispatches on this value and rejects anything outside the
// closed set below.
type Category int

const (
	// CategoryNone marks a parameter with no binding information. It is never
	// produced by the providers in this package and is rejected by the classifier.
	CategoryNone Category = iota

	// CategoryVaryingInput is a per-vertex input attribute (entry-point scope only).
	CategoryVaryingInput

	// CategoryUniform is a uniform buffer occupying a descriptor slot.
	CategoryUniform

	// CategoryPushConstantBuffer is an inline push-constant block with no descriptor slot.
	CategoryPushConstantBuffer

	// CategoryDescriptorTableSlot is a resource (texture, sampler, storage buffer)
	// occupying a descriptor slot.
	CategoryDescriptorTableSlot

	// CategorySubpass is a subpass input attachment.
	CategorySubpass

	// CategoryMixed is a parameter whose storage spans more than one binding
	// category, e.g. a subpass input that also occupies a descriptor slot.
	// Its constituent categories are reported through SubCategoryAt.
	CategoryMixed
)

// String returns the category name used in error messages.
func (c Category) String() string {
	switch c {
	case CategoryVaryingInput:
		return "varying input"
	case CategoryUniform:
		return "uniform"
	case CategoryPushConstantBuffer:
		return "push constant buffer"
	case CategoryDescriptorTableSlot:
		return "descriptor table slot"
	case CategorySubpass:
		return "subpass"
	case CategoryMixed:
		return "mixed"
	default:
		return "none"
	}
}

// TypeKind describes the shape of a reflected type.
type TypeKind int

const (
	// KindUnknown marks a type the provider could not resolve. The semantic
	// mapper rejects it.
	KindUnknown TypeKind = iota

	// KindScalar is a single scalar value (f32, i32, u32, f16, bool).
	KindScalar

	// KindVector is a vector of 2-4 scalar elements.
	KindVector

	// KindMatrix is a matrix with row and column counts.
	KindMatrix

	// KindResource is an opaque shader resource such as a texture.
	KindResource

	// KindSamplerState is a sampler object.
	KindSamplerState

	// KindConstantBuffer wraps an element type stored in a uniform buffer.
	KindConstantBuffer

	// KindStruct is an aggregate with ordered named fields.
	KindStruct
)

// String returns the kind name used in error messages.
func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindResource:
		return "resource"
	case KindSamplerState:
		return "sampler state"
	case KindConstantBuffer:
		return "constant buffer"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Field is one named member of a struct type, in declaration order.
type Field struct {
	// Name is the field name as written in the shader source.
	Name string

	// Type is the field's reflected type.
	Type Type
}

// Type is the opaque handle to a reflected type tree. Accessors that do not
// apply to the type's kind return zero values (0, nil, empty), mirroring how
// compiler reflection APIs behave for mismatched queries.
type Type interface {
	// Kind returns the shape of this type.
	//
	// Returns:
	//   - TypeKind: the type's kind
	Kind() TypeKind

	// TypeName returns the source-level name of this type, used for diagnostics.
	// Anonymous shapes (plain vectors, matrices) return their canonical spelling.
	//
	// Returns:
	//   - string: the type name
	TypeName() string

	// ElementCount returns the number of elements for vector kinds, 0 otherwise.
	//
	// Returns:
	//   - int: the element count
	ElementCount() int

	// RowCount returns the number of rows for matrix kinds, 0 otherwise.
	//
	// Returns:
	//   - int: the row count
	RowCount() int

	// ColumnCount returns the number of columns for matrix kinds, 0 otherwise.
	//
	// Returns:
	//   - int: the column count
	ColumnCount() int

	// ElementType returns the wrapped type for constant-buffer kinds, nil otherwise.
	//
	// Returns:
	//   - Type: the wrapped element type or nil
	ElementType() Type

	// FieldCount returns the number of fields for struct kinds, 0 otherwise.
	//
	// Returns:
	//   - int: the field count
	FieldCount() int

	// FieldAt returns the i-th field for struct kinds. Out-of-range indices
	// return a zero Field.
	//
	// Parameters:
	//   - i: the field index
	//
	// Returns:
	//   - Field: the field at index i
	FieldAt(i int) Field
}

// EntryPoint describes one entry point exposed by a shader unit.
type EntryPoint interface {
	// FuncName returns the entry point's function name.
	//
	// Returns:
	//   - string: the function name
	FuncName() string

	// Stage returns the pipeline stage the entry point executes in.
	//
	// Returns:
	//   - Stage: the entry point's stage
	Stage() Stage
}

// ParamLayout describes one reflected parameter and its binding layout.
type ParamLayout interface {
	// VarName returns the parameter's variable name.
	//
	// Returns:
	//   - string: the variable name
	VarName() string

	// Type returns the parameter's reflected type.
	//
	// Returns:
	//   - Type: the reflected type
	Type() Type

	// Category returns the parameter's binding category.
	//
	// Returns:
	//   - Category: the binding category
	Category() Category

	// BindingIndex returns the binding index within the parameter's descriptor set.
	//
	// Returns:
	//   - uint32: the binding index
	BindingIndex() uint32

	// BindingSpace returns the descriptor set index the parameter belongs to.
	//
	// Returns:
	//   - uint32: the set index
	BindingSpace() uint32

	// SubCategoryCount returns the number of constituent categories for
	// CategoryMixed parameters, 0 otherwise.
	//
	// Returns:
	//   - int: the sub-category count
	SubCategoryCount() int

	// SubCategoryAt returns the i-th constituent category of a mixed parameter.
	//
	// Parameters:
	//   - i: the sub-category index
	//
	// Returns:
	//   - Category: the sub-category at index i
	SubCategoryAt(i int) Category

	// Offset returns the binding offset (binding index, or input attachment
	// index for CategorySubpass) recorded for the given constituent category.
	//
	// Parameters:
	//   - c: the constituent category to query
	//
	// Returns:
	//   - uint32: the offset recorded for that category, 0 if absent
	Offset(c Category) uint32

	// Space returns the descriptor set index recorded for the given
	// constituent category.
	//
	// Parameters:
	//   - c: the constituent category to query
	//
	// Returns:
	//   - uint32: the set index recorded for that category, 0 if absent
	Space(c Category) uint32
}

// ShaderUnit is one compiled shader stage's reflection data: its entry points
// plus parameters at entry-point scope and program (global) scope. Units are
// immutable once constructed; providers build them during parsing and hand
// them to the classifier, which only reads.
type ShaderUnit interface {
	// Path returns the source path of the shader, used in diagnostics.
	//
	// Returns:
	//   - string: the shader source path
	Path() string

	// EntryPointCount returns the number of entry points in the unit.
	//
	// Returns:
	//   - int: the entry point count
	EntryPointCount() int

	// EntryPointAt returns the i-th entry point.
	//
	// Parameters:
	//   - i: the entry point index
	//
	// Returns:
	//   - EntryPoint: the entry point at index i, nil if out of range
	EntryPointAt(i int) EntryPoint

	// ParameterCount returns the number of entry-point-scope parameters.
	//
	// Returns:
	//   - int: the entry-point-scope parameter count
	ParameterCount() int

	// ParameterAt returns the i-th entry-point-scope parameter.
	//
	// Parameters:
	//   - i: the parameter index
	//
	// Returns:
	//   - ParamLayout: the parameter at index i, nil if out of range
	ParameterAt(i int) ParamLayout

	// GlobalParameterCount returns the number of program-scope parameters.
	//
	// Returns:
	//   - int: the program-scope parameter count
	GlobalParameterCount() int

	// GlobalParameterAt returns the i-th program-scope parameter.
	//
	// Parameters:
	//   - i: the parameter index
	//
	// Returns:
	//   - ParamLayout: the parameter at index i, nil if out of range
	GlobalParameterAt(i int) ParamLayout
}
