package spring

import (
	"context"
	"log/slog"

	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Generator implements the spring target: the java target's records and
// tagged unions plus a route interface and a controller per route.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a new Spring generator
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// GetType returns the generator type
func (g *Generator) GetType() string { return config.TypeSpring }

// Generate renders every custom model reachable from app.
func (g *Generator) Generate(ctx context.Context, app *model.Application, target config.Target) (*artifact.Set, error) {
	idx, err := graph.NewRegisteredIndex(app, graph.Strict, g.logger)
	if err != nil {
		return nil, err
	}
	sctx := NewContext(target.BaseNamespace)
	set := artifact.NewSet()

	err = graph.Travel(app, idx, func(c model.Custom) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch m := c.(type) {
		case *model.RoutesModel:
			route, err := sctx.RouteFile(m)
			if err != nil {
				return err
			}
			if err := set.AddString(sctx.Path(m.ID()), route, artifact.LangJava); err != nil {
				return err
			}
			controller, err := sctx.ControllerFile(m)
			if err != nil {
				return err
			}
			return set.AddString(sctx.Path(m.ID()+"Controller"), controller, artifact.LangJava)
		case model.Model:
			code, err := sctx.ModelFile(m)
			if err != nil {
				return err
			}
			return set.AddString(sctx.Path(c.ID()), code, artifact.LangJava)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("spring sources rendered", "files", set.Len())
	return set, nil
}
