// Package codegen emits Go source for declared pipelines: one generated type
// per pipeline with a constructor that creates its bind group layouts, one
// bind method per descriptor set taking a runtime argument per binding, and
// one push method per push constant field writing raw bytes at offset 0. The
// emission is purely mechanical; all layout decisions were already made by
// the binding and pipeline packages.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"log/slog"
	"strings"
	"text/template"
	"unicode"

	"github.com/Carmen-Shannon/pipewriter/backend"
	"github.com/Carmen-Shannon/pipewriter/binding"
	"github.com/Carmen-Shannon/pipewriter/pipeline"
	"github.com/Carmen-Shannon/pipewriter/reflection"
	"github.com/cogentcore/webgpu/wgpu"
)

// entryModel is one rendered bind group layout entry: the entry header
// literal plus the field assignments that populate its resource-specific
// sub-layout, mirroring how the layouts are built by hand in a renderer.
type entryModel struct {
	Header  string
	Assigns []string
}

// paramModel is one bind method argument and its bind group entry literal.
type paramModel struct {
	Arg     string
	GoType  string
	Entry   string
	Summary string
}

// setModel is one descriptor set of a generated pipeline.
type setModel struct {
	Index   uint32
	Label   string
	Entries []entryModel
	Params  []paramModel
}

// pushModel is one generated push method.
type pushModel struct {
	Method string
	Name   string
	Size   uint32
	Stage  string
}

// attrModel is one rendered vertex attribute literal.
type attrModel struct {
	Format   string
	Offset   uint64
	Location uint32
}

// pipelineModel is the fully prepared template input for one pipeline.
type pipelineModel struct {
	TypeName    string
	Name        string
	Sets        []setModel
	Pushes      []pushModel
	VertexAttrs []attrModel
	Stride      uint64
	HasVertex   bool
}

// fileModel is the template input for one generated file.
type fileModel struct {
	Package   string
	Pipelines []pipelineModel
}

// File renders Go source for the given pipelines into the named package and
// formats it with go/format.
//
// Parameters:
//   - pkg: the Go package name for the generated file
//   - pipelines: the built pipeline interfaces to emit
//
// Returns:
//   - []byte: the formatted Go source
//   - error: non-nil if a pipeline cannot be rendered or the output does not format
func File(pkg string, pipelines []pipeline.Interface) ([]byte, error) {
	model := fileModel{Package: pkg}
	for _, p := range pipelines {
		pm, err := buildModel(p)
		if err != nil {
			return nil, err
		}
		model.Pipelines = append(model.Pipelines, pm)
		slog.Debug("rendered pipeline",
			"pipeline", p.Name(),
			"sets", len(pm.Sets),
			"push_fields", len(pm.Pushes),
		)
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, model); err != nil {
		return nil, fmt.Errorf("codegen: template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: generated source does not format: %w", err)
	}
	return src, nil
}

// buildModel prepares the template input for one pipeline from its derived
// set layouts, visibility flags, push operations, and vertex inputs.
func buildModel(p pipeline.Interface) (pipelineModel, error) {
	pm := pipelineModel{
		TypeName: "Pipeline" + exportName(p.Name()),
		Name:     p.Name(),
	}

	layouts, err := p.SetLayouts()
	if err != nil {
		return pipelineModel{}, err
	}
	visibility := bindingVisibility(p)

	for _, layout := range layouts {
		sm := setModel{
			Index: layout.SetIndex,
			Label: fmt.Sprintf("%s set %d", p.Name(), layout.SetIndex),
		}
		seen := make(map[uint32]bool, len(layout.Bindings))
		for _, rb := range layout.Bindings {
			if seen[rb.Binding] {
				// Same coordinates declared by more than one stage; the
				// visibility union already covers both.
				continue
			}
			seen[rb.Binding] = true
			sm.Entries = append(sm.Entries, renderEntry(rb, visibility[coord{layout.SetIndex, rb.Binding}]))
			sm.Params = append(sm.Params, renderParam(rb))
		}
		pm.Sets = append(pm.Sets, sm)
	}

	for _, op := range p.PushOperations() {
		pm.Pushes = append(pm.Pushes, pushModel{
			Method: "Push" + exportName(op.Name),
			Name:   op.Name,
			Size:   op.Type.ByteSize(),
			Stage:  op.Stage.String(),
		})
	}

	if vertex := p.Stage(reflection.StageVertex); vertex != nil && len(vertex.VaryingInputs) > 0 {
		layout, err := backend.VertexBufferLayout(vertex)
		if err != nil {
			return pipelineModel{}, err
		}
		pm.HasVertex = true
		pm.Stride = layout.ArrayStride
		for _, attr := range layout.Attributes {
			pm.VertexAttrs = append(pm.VertexAttrs, attrModel{
				Format:   vertexFormatName(attr.Format),
				Offset:   attr.Offset,
				Location: attr.ShaderLocation,
			})
		}
	}

	return pm, nil
}

// coord identifies one (set, binding) slot.
type coord struct {
	set     uint32
	binding uint32
}

// bindingVisibility unions the stage visibility flags of every slot across
// the pipeline's stages.
func bindingVisibility(p pipeline.Interface) map[coord]wgpu.ShaderStage {
	result := make(map[coord]wgpu.ShaderStage)
	for _, si := range p.Stages() {
		flag := backend.StageVisibility(si.Stage)
		for _, rb := range si.ResourceBindings {
			result[coord{rb.Set, rb.Binding}] |= flag
		}
	}
	return result
}

// renderEntry renders the layout entry construction for one binding.
func renderEntry(rb binding.ResourceBinding, visibility wgpu.ShaderStage) entryModel {
	em := entryModel{
		Header: fmt.Sprintf("wgpu.BindGroupLayoutEntry{Binding: %d, Visibility: %s}",
			rb.Binding, visibilityExpr(visibility)),
	}
	switch rb.Type.Kind() {
	case binding.SemanticSampledImage, binding.SemanticImage:
		em.Assigns = []string{
			"e.Texture.SampleType = wgpu.TextureSampleTypeFloat",
			"e.Texture.ViewDimension = wgpu.TextureViewDimension2D",
		}
	case binding.SemanticSampler:
		em.Assigns = []string{
			"e.Sampler.Type = wgpu.SamplerBindingTypeFiltering",
		}
	default:
		em.Assigns = []string{
			"e.Buffer.Type = wgpu.BufferBindingTypeUniform",
			fmt.Sprintf("e.Buffer.MinBindingSize = %d", rb.Type.ByteSize()),
		}
	}
	return em
}

// renderParam renders one bind method argument and its bind group entry.
func renderParam(rb binding.ResourceBinding) paramModel {
	arg := unexportName(rb.Name)
	pm := paramModel{
		Arg:     arg,
		Summary: fmt.Sprintf("%s (%s)", rb.Name, rb.Type),
	}
	switch rb.Type.Kind() {
	case binding.SemanticSampledImage, binding.SemanticImage:
		pm.GoType = "*wgpu.TextureView"
		pm.Entry = fmt.Sprintf("{Binding: %d, TextureView: %s}", rb.Binding, arg)
	case binding.SemanticSampler:
		pm.GoType = "*wgpu.Sampler"
		pm.Entry = fmt.Sprintf("{Binding: %d, Sampler: %s}", rb.Binding, arg)
	default:
		pm.GoType = "*wgpu.Buffer"
		pm.Entry = fmt.Sprintf("{Binding: %d, Buffer: %s, Offset: 0, Size: wgpu.WholeSize}", rb.Binding, arg)
	}
	return pm
}

// visibilityExpr renders a wgpu.ShaderStage flag set as Go source.
func visibilityExpr(v wgpu.ShaderStage) string {
	var parts []string
	if v&wgpu.ShaderStageVertex != 0 {
		parts = append(parts, "wgpu.ShaderStageVertex")
	}
	if v&wgpu.ShaderStageFragment != 0 {
		parts = append(parts, "wgpu.ShaderStageFragment")
	}
	if v&wgpu.ShaderStageCompute != 0 {
		parts = append(parts, "wgpu.ShaderStageCompute")
	}
	if len(parts) == 0 {
		return "wgpu.ShaderStageNone"
	}
	return strings.Join(parts, "|")
}

// vertexFormatName renders a wgpu.VertexFormat constant as Go source.
func vertexFormatName(f wgpu.VertexFormat) string {
	switch f {
	case wgpu.VertexFormatFloat32x2:
		return "wgpu.VertexFormatFloat32x2"
	case wgpu.VertexFormatFloat32x3:
		return "wgpu.VertexFormatFloat32x3"
	default:
		return "wgpu.VertexFormatFloat32x4"
	}
}

// exportName converts a declared name like "main" or "tex_sampler" into an
// exported Go identifier like "Main" or "TexSampler".
func exportName(name string) string {
	var sb strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upperNext = true
		case upperNext:
			sb.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "Pipeline"
	}
	return sb.String()
}

// unexportName converts a declared name into an unexported Go identifier
// usable as a method argument.
func unexportName(name string) string {
	exported := exportName(name)
	return strings.ToLower(exported[:1]) + exported[1:]
}

// fileTemplate renders the generated file. The output is passed through
// go/format, so indentation here only needs to be unambiguous, not pretty.
var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by pipewriter. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/cogentcore/webgpu/wgpu"
)
{{range $p := .Pipelines}}
// {{.TypeName}} holds the bind group layouts synthesized for the {{printf "%q" .Name}}
// pipeline and exposes one bind method per descriptor set and one push method
// per push constant field.
type {{.TypeName}} struct {
	device  *wgpu.Device
	layouts []*wgpu.BindGroupLayout
}

// New{{.TypeName}} creates the pipeline's bind group layouts on the device.
func New{{.TypeName}}(device *wgpu.Device) (*{{.TypeName}}, error) {
	p := &{{.TypeName}}{device: device}
{{- range .Sets}}
	{
		entries := make([]wgpu.BindGroupLayoutEntry, 0, {{len .Entries}})
{{- range .Entries}}
		{
			e := {{.Header}}
{{- range .Assigns}}
			{{.}}
{{- end}}
			entries = append(entries, e)
		}
{{- end}}
		layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   {{printf "%q" .Label}},
			Entries: entries,
		})
		if err != nil {
			return nil, err
		}
		p.layouts = append(p.layouts, layout)
	}
{{- end}}
	return p, nil
}

// Layout returns the bind group layout for the given set index.
func (p *{{.TypeName}}) Layout(set int) *wgpu.BindGroupLayout {
	return p.layouts[set]
}
{{range $set := .Sets}}
// BindSet{{$set.Index}} creates a bind group for set {{$set.Index}} and sets it on the pass:
{{- range $set.Params}}
//   - {{.Summary}}
{{- end}}
func (p *{{$p.TypeName}}) BindSet{{$set.Index}}(pass *wgpu.RenderPassEncoder{{range $set.Params}}, {{.Arg}} {{.GoType}}{{end}}) error {
	group, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  {{printf "%q" $set.Label}},
		Layout: p.layouts[{{$set.Index}}],
		Entries: []wgpu.BindGroupEntry{
{{- range $set.Params}}
			{{.Entry}},
{{- end}}
		},
	})
	if err != nil {
		return err
	}
	pass.SetBindGroup({{$set.Index}}, group, nil)
	return nil
}
{{end}}
{{- range .Pushes}}
// {{.Method}} writes the {{printf "%q" .Name}} push constant ({{.Size}} bytes, {{.Stage}} stage)
// into the target buffer at offset 0.
func (p *{{$p.TypeName}}) {{.Method}}(queue *wgpu.Queue, target *wgpu.Buffer, data []byte) {
	queue.WriteBuffer(target, 0, data)
}
{{end}}
{{- if .HasVertex}}
// VertexBufferLayout returns the interleaved vertex buffer layout for the
// pipeline's vertex stage inputs.
func (p *{{.TypeName}}) VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: {{.Stride}},
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
{{- range .VertexAttrs}}
			{Format: {{.Format}}, Offset: {{.Offset}}, ShaderLocation: {{.Location}}},
{{- end}}
		},
	}
}
{{end}}
{{- end}}`))
