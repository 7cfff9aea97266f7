package java

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Generator implements the java target: one source file per record and
// tagged union.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a new Java generator
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// GetType returns the generator type
func (g *Generator) GetType() string { return config.TypeJava }

// Generate renders every record and tagged union reachable from app. Routes
// are skipped; the spring target renders them.
func (g *Generator) Generate(ctx context.Context, app *model.Application, target config.Target) (*artifact.Set, error) {
	idx, err := graph.NewRegisteredIndex(app, graph.Strict, g.logger)
	if err != nil {
		return nil, err
	}
	jctx := NewContext(target.BaseNamespace)
	set := artifact.NewSet()

	err = graph.Travel(app, idx, func(c model.Custom) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, ok := c.(model.Model)
		if !ok {
			return nil
		}
		code, err := jctx.ModelFile(m)
		if err != nil {
			return err
		}
		return set.AddString(jctx.Path(c.ID()), code, artifact.LangJava)
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("java sources rendered", "files", set.Len())
	return set, nil
}

// ModelFile renders the compilation unit of a record or tagged union.
func (c *Context) ModelFile(m model.Model) (string, error) {
	custom, ok := m.(model.Custom)
	if !ok {
		return "", fmt.Errorf("%w: %T has no id", model.ErrUnknownModelKind, m)
	}
	mod := graph.NewModule(custom.ID())

	var (
		body string
		err  error
	)
	switch m := m.(type) {
	case *model.RecordModel:
		body, err = c.RecordDecl(m, mod, DeclOptions{})
	case *model.TaggedUnionModel:
		body, err = c.UnionDecl(m, mod, DeclOptions{})
	default:
		err = fmt.Errorf("%w: %T", model.ErrUnknownModelKind, m)
	}
	if err != nil {
		return "", err
	}
	pkg, _ := c.ResolveID(custom.ID())
	return File(pkg, mod, body)
}
