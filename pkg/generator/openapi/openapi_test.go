package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/generator/jsonschema"
	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

func build(t *testing.T, app *model.Application, opts Options) (*Result, error) {
	t.Helper()
	idx, err := graph.NewRegisteredIndex(app, graph.Strict, opts.Logger)
	require.NoError(t, err)
	return Build(app, idx, opts)
}

func bookApp() *model.Application {
	book := model.Record("lib.Book",
		model.Prop("id", model.UUID()),
		model.Prop("title", model.String()),
	)
	routes := model.Routes("lib.BookRoutes", "/books",
		model.Summary("Books"),
		model.Tags("books"),
		model.Op("list", model.Get("",
			model.Query("limit", model.OptionalWithDefault(model.Number(model.Int), 20)),
			model.Resp("ok", model.Response(200, model.Content(model.Array(book)))),
		)),
		model.Op("get", model.Get("/{id}",
			model.Header("X-Trace", model.String()),
			model.Resp("ok", model.Response(200,
				model.Content(book),
				model.Header("ETag", model.String()),
			)),
			model.Resp("missing", model.Response(404, model.Description("not found"))),
		)),
		model.Op("create", model.Post("/",
			model.Content(book),
			model.Tags("write"),
			model.Resp("created", model.Response(201, model.Content(book))),
		)),
	)
	return model.NewApplication(routes)
}

func TestBuild_Document(t *testing.T) {
	res, err := build(t, bookApp(), Options{})
	require.NoError(t, err)
	doc := res.Document

	assert.Equal(t, Version, doc.OpenAPI)
	assert.Equal(t, "API", doc.Info.Title)
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "Books", doc.Tags[0].Name)
	assert.Equal(t, []string{"lib.Book"}, doc.Components.Schemas.Keys())

	require.Contains(t, doc.Paths, "/books")
	require.Contains(t, doc.Paths, "/books/{id}")
	list := doc.Paths["/books"]["get"]
	assert.Equal(t, "list", list["summary"])
	assert.Equal(t, []any{"books"}, list["tags"])
	assert.Equal(t, []any{map[string]any{
		"name":     "limit",
		"in":       "query",
		"required": false,
		"schema":   jsonschema.Schema{"type": "integer", "format": "int32", "default": 20},
	}}, list["parameters"])

	create := doc.Paths["/books"]["post"]
	assert.Equal(t, []any{"books", "write"}, create["tags"])
	assert.Equal(t, map[string]any{
		"required": true,
		"content": map[string]any{"application/json": map[string]any{
			"schema": jsonschema.Schema{"$ref": "#/components/schemas/lib.Book"},
		}},
	}, create["requestBody"])

	get := doc.Paths["/books/{id}"]["get"]
	params := get["parameters"].([]any)
	require.Len(t, params, 2)
	assert.Equal(t, "path", params[0].(map[string]any)["in"])
	assert.Equal(t, true, params[0].(map[string]any)["required"])
	assert.Equal(t, true, params[1].(map[string]any)["required"])
	responses := get["responses"].(map[string]any)
	assert.Contains(t, responses["200"], "headers")
	assert.Equal(t, map[string]any{"description": "not found"}, responses["404"])
}

func TestBuild_MergesOperationsOnSamePath(t *testing.T) {
	routes := model.Routes("R", "/items",
		model.Op("a", model.Get("", model.Summary("List items"), model.Tags("x", "shared"))),
		model.Op("b", model.Get("/", model.Summary("List items"), model.Tags("y", "shared"))),
	)
	res, err := build(t, model.NewApplication(routes), Options{})
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "shared", "y"}, res.Document.Paths["/items"]["get"]["tags"])
}

func TestBuild_MergeConflict(t *testing.T) {
	routes := model.Routes("R", "/items",
		model.Op("a", model.Get("", model.Summary("one"))),
		model.Op("b", model.Get("", model.Summary("two"))),
	)
	_, err := build(t, model.NewApplication(routes), Options{})
	assert.ErrorIs(t, err, model.ErrMergeConflict)
}

func TestBuild_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		app  *model.Application
		want error
	}{
		{
			name: "duplicate response status",
			app: model.NewApplication(model.Routes("R", "/r",
				model.Op("get", model.Get("",
					model.Resp("ok", model.Response(200)),
					model.Resp("alsoOk", model.Response(200)),
				)),
			)),
			want: model.ErrDuplicateResponseStatus,
		},
		{
			name: "multiple request bodies",
			app: model.NewApplication(model.Routes("R", "/r",
				model.Op("a", model.Post("", model.Summary("s"), model.Content(model.String()))),
				model.Op("b", model.Post("", model.Summary("s"), model.Content(model.String()))),
			)),
			want: model.ErrMultipleRequestBodies,
		},
		{
			name: "duplicate route path",
			app: model.NewApplication(
				model.Routes("A", "/r", model.Op("get", model.Get(""))),
				model.Routes("B", "r/", model.Op("post", model.Post(""))),
			),
			want: model.ErrDuplicateRoutePath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.app, Options{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_Security(t *testing.T) {
	key := model.APIKey("header", "X-Key")
	oauth := model.DefineOAuth2(map[string]string{"read": "Read", "write": "Write"})
	undeclared := model.HTTP("bearer", "JWT")

	routes := model.Routes("R", "/secure",
		model.Op("get", model.Get("",
			model.Secure(model.OneOf(key, undeclared), model.AllOf(oauth.Scope("read"), oauth.Scope("write"))),
			model.Resp("ok", model.Response(204)),
		)),
	)
	app := model.NewApplication(routes)
	app.Securities = []model.SecurityScheme{
		{Name: "apiKey", Provider: key},
		{Name: "oauth", Provider: &model.ClientCredentialsProvider{Define: oauth, TokenURL: "https://auth.example.com/token"}},
	}

	var logs bytes.Buffer
	res, err := build(t, app, Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"apiKey": []any{}},
		map[string]any{"oauth": []any{"read", "write"}},
	}, res.Document.Paths["/secure"]["get"]["security"])

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, graph.WarnSecurityNotFound, res.Warnings[0].Code)
	assert.Equal(t, "GET /secure", res.Warnings[0].Path)
	assert.Contains(t, logs.String(), "SECURITY_NOT_FOUND")

	schemes := res.Document.Components.SecuritySchemes
	require.Contains(t, schemes, "oauth")
	assert.Equal(t, "oauth2", schemes["oauth"].Type)
	assert.Equal(t, openapi3.StringMap{"read": "Read", "write": "Write"}, schemes["oauth"].Flows.ClientCredentials.Scopes)
	assert.Equal(t, "apiKey", schemes["apiKey"].Type)
}

func TestBuild_SecurityTellsOpenIDDefinitionsApart(t *testing.T) {
	first := model.DefineOpenID()
	second := model.DefineOpenID()
	require.NotSame(t, first, second)

	routes := model.Routes("R", "/secure",
		model.Op("get", model.Get("",
			model.Secure(model.AllOf(second)),
			model.Resp("ok", model.Response(204)),
		)),
	)
	app := model.NewApplication(routes)
	app.Securities = []model.SecurityScheme{
		{Name: "first", Provider: &model.OpenIDProvider{Define: first, OpenIDConnectURL: "https://a.example.com/.well-known/openid-configuration"}},
		{Name: "second", Provider: &model.OpenIDProvider{Define: second, OpenIDConnectURL: "https://b.example.com/.well-known/openid-configuration"}},
	}

	res, err := build(t, app, Options{})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"second": []any{}}}, res.Document.Paths["/secure"]["get"]["security"])
	assert.Empty(t, res.Warnings)
}

func TestBuild_SortSchemas(t *testing.T) {
	zebra := model.Record("Zebra")
	apple := model.Record("Apple")
	app := &model.Application{Models: []model.Model{zebra, apple}}

	res, err := build(t, app, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zebra", "Apple"}, res.Document.Components.Schemas.Keys())

	res, err = build(t, app, Options{SortSchemas: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Zebra"}, res.Document.Components.Schemas.Keys())
}

func TestBuild_RelaxedInlinesDroppedModel(t *testing.T) {
	first := model.Record("Dup", model.Prop("a", model.String()))
	second := model.Record("Dup", model.Prop("b", model.String()))
	routes := model.Routes("R", "/r", model.Op("get", model.Get("",
		model.Resp("ok", model.Response(200, model.Content(first))),
		model.Resp("other", model.Response(201, model.Content(second))),
	)))
	app := model.NewApplication(routes)

	idx, err := graph.NewRegisteredIndex(app, graph.Relaxed, nil)
	require.NoError(t, err)
	require.Len(t, idx.Warnings(), 1)

	res, err := Build(app, idx, Options{})
	require.NoError(t, err)
	responses := res.Document.Paths["/r"]["get"]["responses"].(map[string]any)
	content := func(status string) jsonschema.Schema {
		return responses[status].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["schema"].(jsonschema.Schema)
	}
	assert.Equal(t, jsonschema.Schema{"$ref": "#/components/schemas/Dup"}, content("200"))
	assert.Equal(t, "object", content("201")["type"])
}

func TestDocument_JSONKeepsSchemaOrder(t *testing.T) {
	app := &model.Application{Models: []model.Model{model.Record("B"), model.Record("A")}}
	res, err := build(t, app, Options{})
	require.NoError(t, err)
	data, err := res.Document.JSON()
	require.NoError(t, err)
	assert.Less(t, bytes.Index(data, []byte(`"B"`)), bytes.Index(data, []byte(`"A"`)))
}

func TestGenerator_YAML(t *testing.T) {
	target := config.Target{FileName: "openapi.yaml", Info: config.Info{Title: "Books", Version: "2.0.0"}}
	set, err := NewGenerator(nil).Generate(context.Background(), bookApp(), target)
	require.NoError(t, err)

	a, ok := set.Get("openapi.yaml")
	require.True(t, ok)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(a.Content, &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])
	assert.Equal(t, "Books", doc["info"].(map[string]any)["title"])
	responses := doc["paths"].(map[string]any)["/books/{id}"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	assert.Contains(t, responses, "200")
}

func TestGenerator_JSON(t *testing.T) {
	set, err := NewGenerator(nil).Generate(context.Background(), bookApp(), config.Target{})
	require.NoError(t, err)
	a, ok := set.Get("openapi.json")
	require.True(t, ok)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(a.Content, &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])
	assert.Contains(t, doc["components"].(map[string]any)["schemas"], "lib.Book")
}
