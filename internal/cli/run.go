package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/specgen/internal/docserver"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/generator"
	"github.com/blimu-dev/specgen/pkg/model"
	"github.com/blimu-dev/specgen/pkg/openapi"
)

type RunGenerateParams struct {
	ConfigPath string
	// Target restricts the run to the target with this name.
	Target string
	// OutDir overrides the configured output root.
	OutDir string
}

type RunServeParams struct {
	Input string
	Addr  string
}

func RunValidate(input string) error {
	if input == "" {
		return errors.New("--input is required")
	}
	return openapi.ValidateDocument(input)
}

func RunGenerate(ctx context.Context, p RunGenerateParams, app *model.Application, logger *slog.Logger) ([]generator.Result, error) {
	if app == nil {
		return nil, errors.New("no application to generate from")
	}
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, err
	}
	if p.OutDir != "" {
		cfg = withOutDir(cfg, absPath(p.OutDir))
		if err := cfg.Resolve(); err != nil {
			return nil, err
		}
	}
	return generator.NewService(logger).Generate(ctx, cfg, app, p.Target)
}

// withOutDir returns a copy of cfg rooted at outDir. Targets whose output
// directory was derived from the old root are re-derived.
func withOutDir(cfg *config.Config, outDir string) *config.Config {
	out := *cfg
	oldRoot := absPath(cfg.OutDir)
	out.OutDir = outDir
	out.Targets = make([]config.Target, len(cfg.Targets))
	for i, t := range cfg.Targets {
		if t.OutDir == filepath.Join(oldRoot, t.Name) {
			t.OutDir = ""
		}
		out.Targets[i] = t
	}
	return &out
}

func RunServe(ctx context.Context, p RunServeParams, logger *slog.Logger) error {
	if p.Input == "" {
		return errors.New("--input is required")
	}
	doc, err := readDocument(p.Input)
	if err != nil {
		return err
	}
	return docserver.NewServer(p.Addr, doc, logger).Run(ctx)
}

// readDocument returns the JSON form of the document at p. YAML documents
// are converted.
func readDocument(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return json.Marshal(doc)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: not a JSON document", p)
	}
	return data, nil
}
