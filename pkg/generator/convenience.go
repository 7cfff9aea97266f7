package generator

import (
	"context"
	"path/filepath"

	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/model"
	"github.com/blimu-dev/specgen/pkg/openapi"
)

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(ctx context.Context, configPath string, app *model.Application, onlyTarget ...string) ([]Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	target := ""
	if len(onlyTarget) > 0 {
		target = onlyTarget[0]
	}
	return NewService(nil).Generate(ctx, cfg, app, target)
}

// GenerateOpenAPI is a convenience function that writes openapi.json for app
// into outDir.
func GenerateOpenAPI(ctx context.Context, app *model.Application, outDir string) (Result, error) {
	return generateSingle(ctx, app, config.Target{Type: config.TypeOpenAPI, OutDir: outDir})
}

// GenerateJava is a convenience function that writes the java records and
// sealed interfaces of app into outDir under baseNamespace.
func GenerateJava(ctx context.Context, app *model.Application, outDir, baseNamespace string) (Result, error) {
	return generateSingle(ctx, app, config.Target{Type: config.TypeJava, OutDir: outDir, BaseNamespace: baseNamespace})
}

func generateSingle(ctx context.Context, app *model.Application, target config.Target) (Result, error) {
	// Ensure absolute path for outDir
	absOutDir, err := filepath.Abs(target.OutDir)
	if err != nil {
		return Result{}, err
	}
	target.OutDir = absOutDir
	cfg := &config.Config{Targets: []config.Target{target}}
	if err := cfg.Resolve(); err != nil {
		return Result{}, err
	}
	return NewService(nil).GenerateTarget(ctx, cfg.Targets[0], app)
}

// ValidateSpec validates an OpenAPI document, e.g. one written by the openapi target
func ValidateSpec(specPath string) error {
	return openapi.ValidateDocument(specPath)
}
