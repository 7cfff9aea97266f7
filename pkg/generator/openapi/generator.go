package openapi

import (
	"context"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Generator implements the openapi target: one document per run.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a new OpenAPI generator
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// GetType returns the generator type
func (g *Generator) GetType() string { return config.TypeOpenAPI }

// Generate builds the document of app and returns it as a single artifact.
// Ids are resolved with the relaxed policy when the target asks for it.
func (g *Generator) Generate(ctx context.Context, app *model.Application, target config.Target) (*artifact.Set, error) {
	policy := graph.Strict
	if target.RelaxedIDs {
		policy = graph.Relaxed
	}
	idx, err := graph.NewRegisteredIndex(app, policy, g.logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := Build(app, idx, Options{
		Info:        infoOf(target.Info),
		Servers:     serversOf(target.Servers),
		SortSchemas: target.SortSchemas,
		Logger:      g.logger,
	})
	if err != nil {
		return nil, err
	}

	var (
		data []byte
		lang = artifact.LangJSON
	)
	if target.IsYAML() {
		data, err = res.Document.YAML()
		lang = artifact.LangYAML
	} else {
		data, err = res.Document.JSON()
	}
	if err != nil {
		return nil, err
	}

	set := artifact.NewSet()
	if err := set.Add(target.DocumentName(), data, lang); err != nil {
		return nil, err
	}
	g.logger.Debug("openapi document built",
		"paths", len(res.Document.Paths),
		"schemas", res.Document.Components.Schemas.Len(),
		"warnings", len(res.Warnings)+len(idx.Warnings()))
	return set, nil
}

func infoOf(i config.Info) *openapi3.Info {
	return &openapi3.Info{Title: i.Title, Version: i.Version, Description: i.Description}
}

func serversOf(servers []config.Server) openapi3.Servers {
	var out openapi3.Servers
	for _, s := range servers {
		out = append(out, &openapi3.Server{URL: s.URL, Description: s.Description})
	}
	return out
}
