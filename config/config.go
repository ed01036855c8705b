// Package config loads pipeline declarations from HCL. A declaration file
// names each pipeline and its shader sources, mirroring the arguments the
// generator needs to build one pipeline interface per block:
//
//	search_path = "shaders"
//
//	pipeline "main" {
//	  vertex   = "simple.vert.wgsl"
//	  fragment = "simple.frag.wgsl"
//	}
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Pipeline is one pipeline "name" { ... } block. Shader paths are relative to
// the file's search_path unless absolute.
type Pipeline struct {
	// Name is the block label, used for the generated type name.
	Name string `hcl:"name,label"`

	// Vertex is the vertex shader source path.
	Vertex string `hcl:"vertex"`

	// Fragment is the fragment shader source path. Optional for
	// vertex-only pipelines.
	Fragment string `hcl:"fragment,optional"`
}

// Config is the decoded contents of one pipeline declaration file.
type Config struct {
	// SearchPath is the directory shader paths are resolved against.
	// Relative search paths are resolved against the declaration file's
	// directory.
	SearchPath string `hcl:"search_path,optional"`

	// Package is the Go package name for the generated source. Defaults to
	// "shaders" when unset.
	Package string `hcl:"package,optional"`

	// Pipelines are the declared pipelines in file order.
	Pipelines []Pipeline `hcl:"pipeline,block"`

	// dir is the declaration file's directory, recorded during Load.
	dir string
}

// envFunc exposes environment variable lookup to declaration files as
// env("NAME"), so shader roots can follow the build environment.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// Load reads and decodes a pipeline declaration file.
//
// Parameters:
//   - path: the declaration file path
//
// Returns:
//   - *Config: the decoded configuration
//   - error: non-nil if the file cannot be read, parsed, or validated
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	cfg, err := Decode(path, src)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	slog.Debug("loaded pipeline declarations",
		"path", path,
		"pipelines", len(cfg.Pipelines),
		"search_path", cfg.SearchPath,
	)
	return cfg, nil
}

// Decode parses and validates pipeline declarations from raw HCL source.
//
// Parameters:
//   - filename: the source filename, used in diagnostics
//   - src: the raw HCL source
//
// Returns:
//   - *Config: the decoded configuration
//   - error: non-nil if the source cannot be parsed or validated
func Decode(filename string, src []byte) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: %w", diags)
	}

	evalCtx := &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("config: %w", diags)
	}

	if err := cfg.validate(filename); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks that the declarations are usable: at least one pipeline,
// unique names, and a vertex shader on every block.
func (c *Config) validate(filename string) error {
	if len(c.Pipelines) == 0 {
		return fmt.Errorf("config: %s declares no pipelines", filename)
	}
	seen := make(map[string]bool, len(c.Pipelines))
	for _, p := range c.Pipelines {
		if seen[p.Name] {
			return fmt.Errorf("config: %s declares pipeline %q twice", filename, p.Name)
		}
		seen[p.Name] = true
		if p.Vertex == "" {
			return fmt.Errorf("config: pipeline %q has no vertex shader", p.Name)
		}
	}
	return nil
}

// ShaderPath resolves a declared shader path against the search path and the
// declaration file's directory.
//
// Parameters:
//   - declared: the shader path as written in the declaration file
//
// Returns:
//   - string: the resolved path
func (c *Config) ShaderPath(declared string) string {
	if filepath.IsAbs(declared) {
		return declared
	}
	return filepath.Join(c.dir, c.SearchPath, declared)
}
