package reflection

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`@vertex\b[^{]*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`@fragment\b[^{]*?\bfn\s+(\w+)`)

	// computeEntryRegex matches @compute functions and captures the entry point name
	computeEntryRegex = regexp.MustCompile(`@compute\b[^{]*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(2) @binding(0) var diffuseTexture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	// pushConstantDeclRegex captures the variable name and type from
	// declarations like: var<push_constant> color: vec4f;
	pushConstantDeclRegex = regexp.MustCompile(`var<push_constant>\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// ParseWGSLFile reads a WGSL shader from disk and reflects it into a ShaderUnit.
//
// Parameters:
//   - path: the path of the WGSL source file to reflect
//
// Returns:
//   - ShaderUnit: the reflected shader unit
//   - error: non-nil if the file could not be read
func ParseWGSLFile(path string) (ShaderUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reflection: failed to read shader source %q: %w", path, err)
	}
	return ParseWGSLSource(path, string(data)), nil
}

// ParseWGSLSource reflects WGSL shader source into a ShaderUnit. Entry points
// are discovered from @vertex/@fragment/@compute annotations, vertex input
// structs become entry-point-scope varying input parameters, @group/@binding
// declarations and var<push_constant> blocks become program-scope parameters.
//
// Parsing itself never fails: unresolvable types are reflected as KindUnknown
// and rejected later by the classifier with a located error, and a source with
// several entry point annotations is reflected with all of them so the
// classifier can reject the unit as a whole.
//
// Parameters:
//   - path: the shader source path, recorded on the unit for diagnostics
//   - source: the raw WGSL source code string
//
// Returns:
//   - ShaderUnit: the reflected shader unit
func ParseWGSLSource(path, source string) ShaderUnit {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	structTypes := resolveStructTypes(structs)

	opts := parseEntryPoints(cleaned)
	opts = append(opts, parseVaryingInputs(cleaned, structs, structTypes)...)
	opts = append(opts, parseBindingDeclarations(cleaned, structTypes)...)
	opts = append(opts, parsePushConstants(cleaned, structTypes)...)

	return NewUnit(path, opts...)
}

// parseEntryPoints finds every @vertex, @fragment, and @compute function in
// the cleaned source and returns unit options appending one entry point each.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - []UnitOption: options appending the discovered entry points
func parseEntryPoints(cleaned string) []UnitOption {
	var opts []UnitOption
	for _, ep := range []struct {
		re    *regexp.Regexp
		stage Stage
	}{
		{vertexEntryRegex, StageVertex},
		{fragmentEntryRegex, StageFragment},
		{computeEntryRegex, StageCompute},
	} {
		for _, match := range ep.re.FindAllStringSubmatch(cleaned, -1) {
			opts = append(opts, WithEntryPoint(NewEntryPoint(match[1], ep.stage)))
		}
	}
	return opts
}

// parseVaryingInputs converts the fields of every pure vertex input struct
// (at least one @location field, no @builtin fields) into entry-point-scope
// varying input parameters, in struct and field declaration order.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//   - structs: all parsed struct blocks from the source
//   - structTypes: resolved struct types keyed by struct name
//
// Returns:
//   - []UnitOption: options appending the varying input parameters
func parseVaryingInputs(cleaned string, structs []parsedStruct, structTypes map[string]Type) []UnitOption {
	if vertexEntryRegex.FindStringIndex(cleaned) == nil {
		return nil
	}

	var opts []UnitOption
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			opts = append(opts, WithParameter(NewParam(
				f.name,
				resolveType(f.typeName, structTypes),
				CategoryVaryingInput,
			)))
		}
	}
	return opts
}

// parseBindingDeclarations converts every @group(N) @binding(M) declaration
// into a program-scope parameter. Uniform-address-space declarations become
// CategoryUniform parameters whose type is wrapped in a constant buffer;
// everything else (textures, samplers, storage buffers) becomes a
// CategoryDescriptorTableSlot parameter.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//   - structTypes: resolved struct types keyed by struct name
//
// Returns:
//   - []UnitOption: options appending the binding parameters
func parseBindingDeclarations(cleaned string, structTypes map[string]Type) []UnitOption {
	var opts []UnitOption
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.ParseUint(match[1], 10, 32)
		binding, _ := strconv.ParseUint(match[2], 10, 32)
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		category := CategoryDescriptorTableSlot
		paramType := resolveType(typeName, structTypes)
		if addressSpace == "uniform" {
			category = CategoryUniform
			paramType = ConstantBufferType(paramType)
		}

		opts = append(opts, WithGlobalParameter(NewParam(
			varName,
			paramType,
			category,
			WithBinding(uint32(group), uint32(binding)),
		)))
	}
	return opts
}

// parsePushConstants converts every var<push_constant> declaration into a
// program-scope push constant parameter.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//   - structTypes: resolved struct types keyed by struct name
//
// Returns:
//   - []UnitOption: options appending the push constant parameters
func parsePushConstants(cleaned string, structTypes map[string]Type) []UnitOption {
	var opts []UnitOption
	for _, match := range pushConstantDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		varName := strings.TrimSpace(match[1])
		typeName := strings.TrimSpace(match[2])
		opts = append(opts, WithGlobalParameter(NewParam(
			varName,
			resolveType(typeName, structTypes),
			CategoryPushConstantBuffer,
		)))
	}
	return opts
}

// resolveType resolves a WGSL type name to a reflected type using the scalar,
// vector, and matrix tables plus previously-resolved struct types. Unresolved
// names (arrays, atomics, unparsed structs) are reflected as KindUnknown.
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "vec4f", "CameraUniform"
//   - structTypes: resolved struct types keyed by struct name
//
// Returns:
//   - Type: the resolved reflected type
func resolveType(typeName string, structTypes map[string]Type) Type {
	if elements, ok := wgslVectorElementMap[typeName]; ok {
		return VectorType(elements)
	}
	if shape, ok := wgslMatrixShapeMap[typeName]; ok {
		return MatrixType(shape[0], shape[1])
	}
	if wgslScalarSet[typeName] {
		return ScalarType(typeName)
	}
	if typeName == "sampler" || typeName == "sampler_comparison" {
		return SamplerType()
	}
	if strings.HasPrefix(typeName, "texture_") {
		return ResourceType(typeName)
	}
	if t, ok := structTypes[typeName]; ok {
		return t
	}
	return UnknownType(typeName)
}

// resolveStructTypes converts all parsed WGSL structs into reflected struct
// types. It resolves dependencies between structs iteratively, handling cases
// where one struct contains fields typed as another struct. Fields with
// @builtin attributes are skipped as they are not part of the data layout.
//
// Parameters:
//   - structs: all parsed struct blocks from the WGSL source
//
// Returns:
//   - map[string]Type: a map from struct name to reflected struct type
func resolveStructTypes(structs []parsedStruct) map[string]Type {
	names := make(map[string]bool, len(structs))
	for _, ps := range structs {
		names[ps.name] = true
	}

	resolved := make(map[string]Type, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]

		for _, ps := range remaining {
			if dependsOnUnresolved(ps, names, resolved) {
				next = append(next, ps)
				continue
			}
			fields := make([]Field, 0, len(ps.fields))
			for _, f := range ps.fields {
				if f.isBuiltin {
					continue
				}
				fields = append(fields, Field{
					Name: f.name,
					Type: resolveType(f.typeName, resolved),
				})
			}
			resolved[ps.name] = StructType(ps.name, fields...)
			progress = true
		}

		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}

	return resolved
}

// dependsOnUnresolved reports whether a struct has a field typed as another
// parsed struct that has not been resolved yet.
//
// Parameters:
//   - ps: the struct to check
//   - names: the set of all parsed struct names
//   - resolved: struct types resolved so far
//
// Returns:
//   - bool: true if a field references a not-yet-resolved struct
func dependsOnUnresolved(ps parsedStruct, names map[string]bool, resolved map[string]Type) bool {
	for _, f := range ps.fields {
		if names[f.typeName] {
			if _, ok := resolved[f.typeName]; !ok {
				return true
			}
		}
	}
	return false
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField

		// check for @builtin
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		// check for @location(N)
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			loc, err := strconv.Atoi(locMatch[1])
			if err == nil {
				field.location = loc
			}
		} else {
			field.location = -1
		}

		// extract field name and type
		if fm := fieldRegex.FindStringSubmatch(line); fm != nil {
			field.name = fm[1]
			field.typeName = strings.TrimSpace(fm[2])
		} else {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}

// isVertexInputStruct returns true if the struct is a pure vertex input, meaning
// it has at least one @location field and zero @builtin fields. This distinguishes
// vertex input structs from vertex output structs which mix @location with @builtin(position).
//
// Parameters:
//   - ps: the parsed struct to check
//
// Returns:
//   - bool: true if this is a vertex input struct
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested per the WGSL specification.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with all comments removed
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source so they
// do not interfere with struct and field parsing
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with line comments removed
func stripLineComments(source string) string {
	var sb strings.Builder
	lines := strings.SplitSeq(source, "\n")
	for line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source,
// handling nested block comments per the WGSL specification
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source with block comments removed
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets.
// This correctly handles WGSL types like array<FrustumPlane, 6> where the comma is part of
// the type syntax rather than a field separator.
//
// Parameters:
//   - s: the string to split (typically the body of a WGSL struct)
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
