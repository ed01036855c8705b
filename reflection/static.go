package reflection

import "fmt"

// typeDesc is the value-backed implementation of the Type interface. Both the
// WGSL provider and test fixtures build reflected type trees out of it.
type typeDesc struct {
	kind     TypeKind
	name     string
	elements int
	rows     int
	columns  int
	element  Type
	fields   []Field
}

var _ Type = &typeDesc{}

// ScalarType creates a reflected scalar type with the given source name.
//
// Parameters:
//   - name: the scalar type name, e.g. "f32"
//
// Returns:
//   - Type: a scalar reflected type
func ScalarType(name string) Type {
	return &typeDesc{kind: KindScalar, name: name}
}

// VectorType creates a reflected vector type with the given element count.
//
// Parameters:
//   - elements: the number of vector components
//
// Returns:
//   - Type: a vector reflected type
func VectorType(elements int) Type {
	return &typeDesc{
		kind:     KindVector,
		name:     fmt.Sprintf("vec%d", elements),
		elements: elements,
	}
}

// MatrixType creates a reflected matrix type with the given row and column counts.
//
// Parameters:
//   - rows: the number of matrix rows
//   - columns: the number of matrix columns
//
// Returns:
//   - Type: a matrix reflected type
func MatrixType(rows, columns int) Type {
	return &typeDesc{
		kind:    KindMatrix,
		name:    fmt.Sprintf("mat%dx%d", columns, rows),
		rows:    rows,
		columns: columns,
	}
}

// ResourceType creates a reflected opaque resource type (texture, storage
// texture, subpass input) with the given source name.
//
// Parameters:
//   - name: the resource type name, e.g. "texture_2d<f32>"
//
// Returns:
//   - Type: a resource reflected type
func ResourceType(name string) Type {
	return &typeDesc{kind: KindResource, name: name}
}

// SamplerType creates a reflected sampler-state type.
//
// Returns:
//   - Type: a sampler-state reflected type
func SamplerType() Type {
	return &typeDesc{kind: KindSamplerState, name: "sampler"}
}

// ConstantBufferType creates a reflected constant-buffer type wrapping the
// given element type.
//
// Parameters:
//   - element: the type stored inside the buffer
//
// Returns:
//   - Type: a constant-buffer reflected type
func ConstantBufferType(element Type) Type {
	return &typeDesc{
		kind:    KindConstantBuffer,
		name:    fmt.Sprintf("constant buffer of %s", element.TypeName()),
		element: element,
	}
}

// StructType creates a reflected struct type with the given name and ordered fields.
//
// Parameters:
//   - name: the struct's source name
//   - fields: the struct's fields in declaration order
//
// Returns:
//   - Type: a struct reflected type
func StructType(name string, fields ...Field) Type {
	return &typeDesc{kind: KindStruct, name: name, fields: fields}
}

// UnknownType creates a reflected type of KindUnknown carrying the unresolved
// source spelling. The semantic mapper rejects it with a located error instead
// of the provider guessing a shape.
//
// Parameters:
//   - name: the unresolved type spelling
//
// Returns:
//   - Type: an unknown reflected type
func UnknownType(name string) Type {
	return &typeDesc{kind: KindUnknown, name: name}
}

func (t *typeDesc) Kind() TypeKind    { return t.kind }
func (t *typeDesc) TypeName() string  { return t.name }
func (t *typeDesc) ElementCount() int { return t.elements }
func (t *typeDesc) RowCount() int     { return t.rows }
func (t *typeDesc) ColumnCount() int  { return t.columns }
func (t *typeDesc) ElementType() Type { return t.element }
func (t *typeDesc) FieldCount() int   { return len(t.fields) }

func (t *typeDesc) FieldAt(i int) Field {
	if i < 0 || i >= len(t.fields) {
		return Field{}
	}
	return t.fields[i]
}

// entryPoint is the value-backed implementation of the EntryPoint interface.
type entryPoint struct {
	name  string
	stage Stage
}

var _ EntryPoint = &entryPoint{}

// NewEntryPoint creates an entry point description.
//
// Parameters:
//   - name: the entry point's function name
//   - stage: the pipeline stage the entry point executes in
//
// Returns:
//   - EntryPoint: the entry point description
func NewEntryPoint(name string, stage Stage) EntryPoint {
	return &entryPoint{name: name, stage: stage}
}

func (e *entryPoint) FuncName() string { return e.name }
func (e *entryPoint) Stage() Stage     { return e.stage }

// subCategory records one constituent category of a mixed parameter together
// with its binding offset and set index.
type subCategory struct {
	category Category
	offset   uint32
	space    uint32
}

// param is the value-backed implementation of the ParamLayout interface.
type param struct {
	name          string
	paramType     Type
	category      Category
	binding       uint32
	space         uint32
	subCategories []subCategory
}

var _ ParamLayout = &param{}

// ParamOption is a functional option used to configure a parameter layout
// during construction.
type ParamOption func(*param)

// WithBinding sets the descriptor set and binding index of the parameter.
//
// Parameters:
//   - set: the descriptor set index
//   - binding: the binding index within the set
//
// Returns:
//   - ParamOption: a function that sets the parameter's binding coordinates
func WithBinding(set, binding uint32) ParamOption {
	return func(p *param) {
		p.space = set
		p.binding = binding
	}
}

// WithSubCategory appends a constituent category to a mixed parameter, along
// with the binding offset and set index recorded for it.
//
// Parameters:
//   - c: the constituent category
//   - offset: the binding offset (or input attachment index for CategorySubpass)
//   - space: the descriptor set index
//
// Returns:
//   - ParamOption: a function that appends the sub-category
func WithSubCategory(c Category, offset, space uint32) ParamOption {
	return func(p *param) {
		p.subCategories = append(p.subCategories, subCategory{
			category: c,
			offset:   offset,
			space:    space,
		})
	}
}

// NewParam creates a parameter layout with the given name, type, and category,
// applying all provided options.
//
// Parameters:
//   - name: the parameter's variable name
//   - t: the parameter's reflected type
//   - category: the parameter's binding category
//   - opts: a variadic list of ParamOption functions to configure the parameter
//
// Returns:
//   - ParamLayout: the configured parameter layout
func NewParam(name string, t Type, category Category, opts ...ParamOption) ParamLayout {
	p := &param{
		name:      name,
		paramType: t,
		category:  category,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *param) VarName() string       { return p.name }
func (p *param) Type() Type            { return p.paramType }
func (p *param) Category() Category    { return p.category }
func (p *param) BindingIndex() uint32  { return p.binding }
func (p *param) BindingSpace() uint32  { return p.space }
func (p *param) SubCategoryCount() int { return len(p.subCategories) }

func (p *param) SubCategoryAt(i int) Category {
	if i < 0 || i >= len(p.subCategories) {
		return CategoryNone
	}
	return p.subCategories[i].category
}

func (p *param) Offset(c Category) uint32 {
	for _, sub := range p.subCategories {
		if sub.category == c {
			return sub.offset
		}
	}
	return 0
}

func (p *param) Space(c Category) uint32 {
	for _, sub := range p.subCategories {
		if sub.category == c {
			return sub.space
		}
	}
	return 0
}

// unit is the value-backed implementation of the ShaderUnit interface.
type unit struct {
	path         string
	entryPoints  []EntryPoint
	params       []ParamLayout
	globalParams []ParamLayout
}

var _ ShaderUnit = &unit{}

// UnitOption is a functional option used to configure a shader unit during construction.
type UnitOption func(*unit)

// WithEntryPoint appends an entry point to the unit.
//
// Parameters:
//   - ep: the entry point to append
//
// Returns:
//   - UnitOption: a function that appends the entry point
func WithEntryPoint(ep EntryPoint) UnitOption {
	return func(u *unit) {
		u.entryPoints = append(u.entryPoints, ep)
	}
}

// WithParameter appends an entry-point-scope parameter to the unit.
//
// Parameters:
//   - p: the parameter to append
//
// Returns:
//   - UnitOption: a function that appends the parameter
func WithParameter(p ParamLayout) UnitOption {
	return func(u *unit) {
		u.params = append(u.params, p)
	}
}

// WithGlobalParameter appends a program-scope parameter to the unit.
//
// Parameters:
//   - p: the parameter to append
//
// Returns:
//   - UnitOption: a function that appends the parameter
func WithGlobalParameter(p ParamLayout) UnitOption {
	return func(u *unit) {
		u.globalParams = append(u.globalParams, p)
	}
}

// NewUnit creates a shader unit for the given source path, applying all
// provided options. Parameters are reported back in the order they were added.
//
// Parameters:
//   - path: the shader source path, used in diagnostics
//   - opts: a variadic list of UnitOption functions to configure the unit
//
// Returns:
//   - ShaderUnit: the configured shader unit
func NewUnit(path string, opts ...UnitOption) ShaderUnit {
	u := &unit{path: path}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *unit) Path() string              { return u.path }
func (u *unit) EntryPointCount() int      { return len(u.entryPoints) }
func (u *unit) ParameterCount() int       { return len(u.params) }
func (u *unit) GlobalParameterCount() int { return len(u.globalParams) }

func (u *unit) EntryPointAt(i int) EntryPoint {
	if i < 0 || i >= len(u.entryPoints) {
		return nil
	}
	return u.entryPoints[i]
}

func (u *unit) ParameterAt(i int) ParamLayout {
	if i < 0 || i >= len(u.params) {
		return nil
	}
	return u.params[i]
}

func (u *unit) GlobalParameterAt(i int) ParamLayout {
	if i < 0 || i >= len(u.globalParams) {
		return nil
	}
	return u.globalParams[i]
}
