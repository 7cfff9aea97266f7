package jsonschema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Generator implements the jsonschema target: one standalone document per
// record and tagged union, written to <id path>.schema.json.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a new JSON Schema generator
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// GetType returns the generator type
func (g *Generator) GetType() string { return config.TypeJSONSchema }

// Generate walks app and renders every reachable record and tagged union.
// Each document is compiled before it is accepted.
func (g *Generator) Generate(ctx context.Context, app *model.Application, target config.Target) (*artifact.Set, error) {
	policy := graph.Strict
	if target.RelaxedIDs {
		policy = graph.Relaxed
	}
	idx, err := graph.NewRegisteredIndex(app, policy, g.logger)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithRequired()}
	if policy == graph.Relaxed {
		opts = append(opts, WithInlineUnregistered())
	}
	emitter := NewEmitter(idx, opts...)
	set := artifact.NewSet()

	err = graph.Travel(app, idx, func(c model.Custom) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, ok := c.(model.Model)
		if !ok {
			return nil
		}
		doc, err := emitter.Document(m)
		if err != nil {
			return err
		}
		if err := Check(doc); err != nil {
			return fmt.Errorf("%s: %w", c.ID(), err)
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		return set.Add(FileName(c.ID()), append(data, '\n'), artifact.LangJSON)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// FileName maps a dot-segmented id to its schema file: "com.example.Book"
// gives "com/example/Book.schema.json".
func FileName(id string) string {
	return strings.ReplaceAll(id, ".", "/") + ".schema.json"
}
