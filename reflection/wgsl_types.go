package reflection

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// wgslVectorElementMap maps WGSL vector type names to their component count.
// Both the templated spelling (vec3<f32>) and the shorthand (vec3f) are listed.
var wgslVectorElementMap = map[string]int{
	"vec2<f32>": 2, "vec2f": 2,
	"vec3<f32>": 3, "vec3f": 3,
	"vec4<f32>": 4, "vec4f": 4,
	"vec2<i32>": 2, "vec2i": 2,
	"vec3<i32>": 3, "vec3i": 3,
	"vec4<i32>": 4, "vec4i": 4,
	"vec2<u32>": 2, "vec2u": 2,
	"vec3<u32>": 3, "vec3u": 3,
	"vec4<u32>": 4, "vec4u": 4,
	"vec2<f16>": 2, "vec2h": 2,
	"vec3<f16>": 3, "vec3h": 3,
	"vec4<f16>": 4, "vec4h": 4,
}

// wgslMatrixShapeMap maps WGSL matrix type names to their [rows, columns]
// shape. WGSL spells matrices matCxR (C columns of vecR).
var wgslMatrixShapeMap = map[string][2]int{
	"mat2x2<f32>": {2, 2}, "mat2x2f": {2, 2},
	"mat2x3<f32>": {3, 2}, "mat2x3f": {3, 2},
	"mat2x4<f32>": {4, 2}, "mat2x4f": {4, 2},
	"mat3x2<f32>": {2, 3}, "mat3x2f": {2, 3},
	"mat3x3<f32>": {3, 3}, "mat3x3f": {3, 3},
	"mat3x4<f32>": {4, 3}, "mat3x4f": {4, 3},
	"mat4x2<f32>": {2, 4}, "mat4x2f": {2, 4},
	"mat4x3<f32>": {3, 4}, "mat4x3f": {3, 4},
	"mat4x4<f32>": {4, 4}, "mat4x4f": {4, 4},
}

// wgslScalarSet lists the WGSL scalar type names.
var wgslScalarSet = map[string]bool{
	"f32":  true,
	"i32":  true,
	"u32":  true,
	"f16":  true,
	"bool": true,
}
