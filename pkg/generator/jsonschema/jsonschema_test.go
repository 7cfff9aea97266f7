package jsonschema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

func index(t *testing.T, models ...model.Model) *graph.Index {
	t.Helper()
	idx, err := graph.NewRegisteredIndex(&model.Application{Models: models}, graph.Strict, nil)
	require.NoError(t, err)
	return idx
}

func TestDefine_Record(t *testing.T) {
	tag := model.Record("Tagged",
		model.Prop("id", model.String()),
		model.Prop("name", model.String()),
		model.Prop("tags", model.Array(model.String())),
	)
	emitter := NewEmitter(index(t, tag))
	def, err := emitter.Define(tag)
	require.NoError(t, err)
	assert.Equal(t, Schema{
		"type": "object",
		"properties": Schema{
			"id":   Schema{"type": "string"},
			"name": Schema{"type": "string"},
			"tags": Schema{"type": "array", "items": Schema{"type": "string"}},
		},
	}, def)

	doc, err := emitter.Document(tag)
	require.NoError(t, err)
	assert.Equal(t, Draft2020, doc["$schema"])
	assert.NotContains(t, doc, "required")
	assert.NotContains(t, doc, "$defs")
	assert.NoError(t, Check(doc))
}

func TestDefine_RecordWithRequired(t *testing.T) {
	rec := model.Record("Tagged",
		model.Prop("id", model.String()),
		model.Prop("kind", model.Constant(model.String(), "tagged")),
		model.Prop("note", model.Optional(model.String())),
	)
	def, err := NewEmitter(index(t, rec), WithRequired()).Define(rec)
	require.NoError(t, err)
	assert.Equal(t, []any{"id", "kind"}, def["required"])
}

func TestDocument_SharedAndRecursiveRecords(t *testing.T) {
	author := model.Record("lib.Author", model.Prop("name", model.String()))
	book := model.Record("lib.Book",
		model.Prop("author", author),
		model.Prop("coAuthor", model.Optional(author)),
	)
	emitter := NewEmitter(index(t, book), WithRequired())
	doc, err := emitter.Document(book)
	require.NoError(t, err)

	props := doc["properties"].(Schema)
	assert.Equal(t, Schema{"$ref": "#/$defs/lib.Author"}, props["author"])
	assert.Equal(t, Schema{"oneOf": []any{Schema{"type": "null"}, Schema{"$ref": "#/$defs/lib.Author"}}}, props["coAuthor"])
	assert.Equal(t, []any{"author"}, doc["required"])

	defs := doc["$defs"].(Schema)
	require.Contains(t, defs, "lib.Author")
	assert.Len(t, defs, 1)
	assert.Equal(t, []string{"lib.Book", "lib.Author"}, emitter.DefinitionIDs())
	assert.NoError(t, Check(doc))
}

func TestDocument_Union(t *testing.T) {
	circle := model.Record("Circle",
		model.Prop("kind", model.Constant(model.String(), "circle")),
		model.Prop("radius", model.Number(model.Double, model.Minimum(0, false))),
	)
	square := model.Record("Square",
		model.Prop("kind", model.Constant(model.String(), "square")),
		model.Prop("side", model.Number(model.Int)),
	)
	shape := model.MustTaggedUnion("Shape", model.Variant("circle", circle), model.Variant("square", square))

	doc, err := NewEmitter(index(t, shape), WithRequired()).Document(shape)
	require.NoError(t, err)
	assert.Equal(t, []any{Schema{"$ref": "#/$defs/Circle"}, Schema{"$ref": "#/$defs/Square"}}, doc["oneOf"])

	defs := doc["$defs"].(Schema)
	circleProps := defs["Circle"].(Schema)["properties"].(Schema)
	assert.Equal(t, Schema{"type": "string", "const": "circle"}, circleProps["kind"])
	assert.Equal(t, Schema{"type": "number", "format": "double", "exclusiveMinimum": 0.0}, circleProps["radius"])

	assert.NoError(t, Validate(doc, map[string]any{"kind": "square", "side": 2}))
	assert.Error(t, Validate(doc, map[string]any{"kind": "square", "radius": 2}))
	assert.Error(t, Validate(doc, map[string]any{"kind": "circle", "radius": -1}))
}

func TestSchema_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		model model.Model
		want  Schema
	}{
		{"int", model.Number(model.Int), Schema{"type": "integer", "format": "int32"}},
		{"short", model.Number(model.Short), Schema{"type": "integer"}},
		{"decimal", model.Number(model.Decimal), Schema{"type": "number"}},
		{"string rules", model.String(model.MinLength(1), model.Pattern("^[a-z]+$")), Schema{"type": "string", "minLength": 1, "pattern": "^[a-z]+$"}},
		{"email", model.String(model.Format("email")), Schema{"type": "string", "format": "email"}},
		{"set", model.Set(model.Boolean()), Schema{"type": "array", "items": Schema{"type": "boolean"}, "uniqueItems": true}},
		{"map", model.Map(model.Number(model.Long)), Schema{"type": "object", "additionalProperties": Schema{"type": "integer", "format": "int64"}}},
		{"date", model.Date(), Schema{"type": "string", "format": "date"}},
		{"datetime", model.DateTime(), Schema{"type": "string", "format": "date-time"}},
		{"uuid", model.UUID(), Schema{"type": "string", "format": "uuid"}},
		{"optional default", model.OptionalWithDefault(model.Number(model.Int), 5), Schema{"type": "integer", "format": "int32", "default": 5}},
		{"optional null default", model.Optional(model.String(), model.Default(nil)), Schema{"oneOf": []any{Schema{"type": "null"}, Schema{"type": "string"}}, "default": nil}},
		{"nested optional", model.Optional(model.Optional(model.Boolean())), Schema{"oneOf": []any{Schema{"type": "null"}, Schema{"type": "boolean"}}}},
		{"decimal constant", model.Constant(model.Number(model.Decimal), "1.50"), Schema{"type": "number", "const": json.Number("1.5")}},
		{"described", model.Boolean(model.Description("flag"), model.Deprecated()), Schema{"type": "boolean", "description": "flag", "deprecated": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEmitter(graph.NewIndex(graph.Strict, nil)).Schema(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema_UnregisteredRecord(t *testing.T) {
	lonely := model.Record("Lonely", model.Prop("a", model.String()))
	_, err := NewEmitter(graph.NewIndex(graph.Strict, nil)).Schema(lonely)
	assert.ErrorIs(t, err, model.ErrReferenceNotFound)

	inlined, err := NewEmitter(graph.NewIndex(graph.Relaxed, nil), WithInlineUnregistered()).Schema(lonely)
	require.NoError(t, err)
	assert.Equal(t, "object", inlined["type"])
}

func TestSchema_ComponentsPrefix(t *testing.T) {
	author := model.Record("Author")
	s, err := NewEmitter(index(t, author), WithRefPrefix(ComponentsPrefix)).Schema(model.Array(author))
	require.NoError(t, err)
	assert.Equal(t, Schema{"type": "array", "items": Schema{"$ref": "#/components/schemas/Author"}}, s)
}

func TestSchema_UnknownKind(t *testing.T) {
	_, err := NewEmitter(graph.NewIndex(graph.Strict, nil)).Schema(nil)
	assert.ErrorIs(t, err, model.ErrUnknownModelKind)
}

func TestGenerator_Generate(t *testing.T) {
	author := model.Record("lib.Author", model.Prop("name", model.String()))
	rec := model.Record("lib.Book", model.Prop("author", author))
	routes := model.Routes("lib.Books", "/books", model.Op("list", model.Get("",
		model.Resp("ok", model.Response(200, model.Content(model.Array(rec)))),
	)))

	set, err := NewGenerator(nil).Generate(context.Background(), model.NewApplication(routes), config.Target{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/Author.schema.json", "lib/Book.schema.json"}, set.Paths())

	book, ok := set.Get("lib/Book.schema.json")
	require.True(t, ok)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(book.Content, &doc))
	assert.Contains(t, doc["$defs"], "lib.Author")
	assert.Equal(t, []any{"author"}, doc["required"])
}

func TestLiteral(t *testing.T) {
	v, err := Literal(model.Date(), "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", v)

	_, err = Literal(model.UUID(), "nope")
	assert.ErrorIs(t, err, model.ErrInvalidConstant)

	rec := model.Record("R", model.Prop("kind", model.Constant(model.String(), "r")), model.Prop("n", model.Number(model.Int)))
	v, err = Literal(rec, map[string]any{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "r", "n": 1}, v)
}
