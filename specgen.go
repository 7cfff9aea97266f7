// Package specgen generates JSON Schema documents, OpenAPI 3.1 documents and
// Java sources from schema models declared in Go.
//
// Models are built with the constructors of the model package and grouped
// into a model.Application. Generation is driven by a YAML configuration
// listing one or more targets.
//
// Quick Start:
//
//	import (
//		"github.com/blimu-dev/specgen"
//		"github.com/blimu-dev/specgen/pkg/model"
//	)
//
//	var book = model.Record("library.Book",
//		model.Prop("id", model.UUID()),
//		model.Prop("title", model.String()),
//	)
//
//	func main() {
//		specgen.Main(model.NewApplication(
//			model.Routes("library.BookRoutes", "/books", ...),
//		))
//	}
//
// Running the program with "generate --config specgen.yaml" then writes every
// configured target. For more advanced usage, see the generator package.
package specgen

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/blimu-dev/specgen/internal/cli"
	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/generator"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Target types accepted in GenerateOptions.Type.
const (
	TypeJSONSchema = config.TypeJSONSchema
	TypeOpenAPI    = config.TypeOpenAPI
	TypeJava       = config.TypeJava
	TypeSpring     = config.TypeSpring
)

// Result reports one generated target.
type Result = generator.Result

// GenerateFromConfig generates every target of a YAML configuration file.
// Optionally, you can specify a single target name to generate only that target.
//
// Example:
//
//	// Generate all targets from config
//	results, err := specgen.GenerateFromConfig(ctx, "./specgen.yaml", app)
//
//	// Generate only a specific target
//	results, err := specgen.GenerateFromConfig(ctx, "./specgen.yaml", app, "server")
func GenerateFromConfig(ctx context.Context, configPath string, app *model.Application, target ...string) ([]Result, error) {
	return generator.GenerateFromConfig(ctx, configPath, app, target...)
}

// GenerateOptions contains options for a single target run without a
// configuration file.
type GenerateOptions struct {
	Type          string   // Target type (e.g., "openapi")
	OutDir        string   // Output directory
	BaseNamespace string   // Java package prefix
	FileName      string   // OpenAPI document name, openapi.json by default
	IncludeTags   []string // Regex patterns for tags to include
	ExcludeTags   []string // Regex patterns for tags to exclude
	Info          config.Info
}

// Generate renders one target of app into opts.OutDir.
//
// Example:
//
//	res, err := specgen.Generate(ctx, app, specgen.GenerateOptions{
//		Type:          specgen.TypeSpring,
//		OutDir:        "./src/main/java",
//		BaseNamespace: "com.example.library",
//	})
func Generate(ctx context.Context, app *model.Application, opts GenerateOptions) (Result, error) {
	outDir, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return Result{}, err
	}
	cfg := &config.Config{
		OutDir: outDir,
		Info:   opts.Info,
		Targets: []config.Target{{
			Type:          opts.Type,
			OutDir:        outDir,
			BaseNamespace: opts.BaseNamespace,
			FileName:      opts.FileName,
			IncludeTags:   opts.IncludeTags,
			ExcludeTags:   opts.ExcludeTags,
		}},
	}
	if err := cfg.Resolve(); err != nil {
		return Result{}, err
	}
	return generator.NewService(nil).GenerateTarget(ctx, cfg.Targets[0], app)
}

// Render returns the files one target would write, keyed by relative path,
// without touching the filesystem.
func Render(ctx context.Context, app *model.Application, opts GenerateOptions) (map[string][]byte, error) {
	sink := artifact.NewMemorySink()
	svc := generator.NewService(nil).WithSink(func(config.Target) artifact.Sink { return sink })
	cfg := &config.Config{
		OutDir: os.TempDir(),
		Info:   opts.Info,
		Targets: []config.Target{{
			Type:          opts.Type,
			BaseNamespace: opts.BaseNamespace,
			FileName:      opts.FileName,
			IncludeTags:   opts.IncludeTags,
			ExcludeTags:   opts.ExcludeTags,
		}},
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if _, err := svc.GenerateTarget(ctx, cfg.Targets[0], app); err != nil {
		return nil, err
	}
	return sink.Files(), nil
}

// ValidateSpec validates an OpenAPI document file or URL.
// This is useful for checking a document written by the openapi target.
func ValidateSpec(specPath string) error {
	return generator.ValidateSpec(specPath)
}

// Main runs the specgen command line for app: "generate --config
// specgen.yaml [--target name]", "validate" and "serve". It exits the
// process with status 1 on error.
func Main(app *model.Application) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(filepath.Base(os.Args[0]), app)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
