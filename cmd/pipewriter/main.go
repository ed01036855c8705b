package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/pipewriter/binding"
	"github.com/Carmen-Shannon/pipewriter/codegen"
	"github.com/Carmen-Shannon/pipewriter/config"
	"github.com/Carmen-Shannon/pipewriter/pipeline"
	"github.com/Carmen-Shannon/pipewriter/reflection"
)

// main is the entrypoint for the pipewriter generator.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the generator logic for easier testing and error handling.
func run(out io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("pipewriter", flag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.Usage = func() {
		fmt.Fprint(out, `pipewriter - generates resource binding code from shader reflection.

Usage:
  pipewriter [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "pipelines.hcl", "Path to the pipeline declaration file.")
	outFlag := flagSet.String("out", "pipelines_gen.go", "Path of the generated Go source file.")
	pkgFlag := flagSet.String("pkg", "", "Package name for the generated source (overrides the declaration file).")
	verboseFlag := flagSet.Bool("v", false, "Enable debug logging.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *verboseFlag {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	pkg := cfg.Package
	if *pkgFlag != "" {
		pkg = *pkgFlag
	}
	if pkg == "" {
		pkg = "shaders"
	}

	built := make([]pipeline.Interface, 0, len(cfg.Pipelines))
	for _, decl := range cfg.Pipelines {
		p, err := buildPipeline(cfg, decl)
		if err != nil {
			return fmt.Errorf("pipeline %q: %w", decl.Name, err)
		}
		built = append(built, p)
		slog.Info("built pipeline interface", "pipeline", decl.Name, "stages", len(p.Stages()))
	}

	src, err := codegen.File(pkg, built)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outFlag, src, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", *outFlag, err)
	}

	slog.Info("wrote generated pipelines", "path", *outFlag, "pipelines", len(built))
	return nil
}

// buildPipeline reflects and classifies each declared shader stage, then
// merges the stages into one pipeline interface. Any reflection or
// classification failure aborts the pipeline as a whole.
func buildPipeline(cfg *config.Config, decl config.Pipeline) (pipeline.Interface, error) {
	paths := []string{decl.Vertex}
	if decl.Fragment != "" {
		paths = append(paths, decl.Fragment)
	}

	stages := make([]*binding.ShaderInterface, 0, len(paths))
	for _, declared := range paths {
		path := cfg.ShaderPath(declared)
		slog.Debug("reflecting shader", "path", path)

		unit, err := reflection.ParseWGSLFile(path)
		if err != nil {
			return nil, err
		}
		si, err := binding.Classify(unit)
		if err != nil {
			return nil, err
		}
		stages = append(stages, si)
	}

	return pipeline.New(decl.Name, stages...)
}
