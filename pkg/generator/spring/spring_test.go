package spring

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/generator/java"
	"github.com/blimu-dev/specgen/pkg/model"
)

func bookRoutes() *model.RoutesModel {
	book := model.Record("books.Book",
		model.Prop("id", model.String()),
		model.Prop("title", model.String()),
	)
	return model.Routes("books.BookRoutes", "/books",
		model.Op("getBook", model.Get("/{id}",
			model.Query("expand", model.Optional(model.Boolean(), model.Default(false))),
			model.Header("X-Trace", model.String()),
			model.Resp("ok", model.Response(200,
				model.Content(book),
				model.Header("X-Version", model.Number(model.Int)),
				model.Header("X-Note", model.Optional(model.String())),
			)),
			model.Resp("notFound", model.Response(404)),
		)),
		model.Op("createBook", model.Post("",
			model.Content(book),
			model.Resp("created", model.Response(201, model.Content(book))),
		)),
	)
}

func TestRouteFile(t *testing.T) {
	code, err := NewContext("com.example").RouteFile(bookRoutes())
	require.NoError(t, err)

	assert.Contains(t, code, "package com.example.books;")
	assert.Contains(t, code, "@NullMarked\npublic interface BookRoutes {")
	assert.Contains(t, code, "GetBookResponse getBook(GetBookRequest request);")
	assert.Contains(t, code, "CreateBookResponse createBook(CreateBookRequest request);")
	assert.Contains(t, code, "sealed interface GetBookResponse permits GetBookResponse.Ok, GetBookResponse.NotFound {")
	assert.Contains(t, code, ") implements GetBookResponse {")
	assert.Contains(t, code, `private static final String name$ = "notFound";`)
	assert.Contains(t, code, "record GetBookRequest(PathParameters pathParameters, QueryParameters queryParameters, HeaderParameters headerParameters) {")
	assert.Contains(t, code, "record CreateBookRequest(com.example.books.Book content) {")
	assert.Contains(t, code, "public record PathParameters(")
	assert.Contains(t, code, "@Nullable Boolean expand")

	formatted, err := java.Format([]byte(code))
	require.NoError(t, err)
	assert.Contains(t, string(formatted), "\n    GetBookResponse getBook(GetBookRequest request);\n")
}

func TestControllerFile(t *testing.T) {
	code, err := NewContext("com.example").ControllerFile(bookRoutes())
	require.NoError(t, err)

	for _, want := range []string{
		"import org.springframework.http.HttpHeaders;",
		"import tools.jackson.databind.ObjectMapper;",
		"@RestController\n@RequestMapping(\"/books\")\npublic class BookRoutesController {",
		"public BookRoutesController(BookRoutes instance, ObjectMapper objectMapper) {",
		`@GetMapping("/{id}")`,
		`@PathVariable("id") String pathId`,
		`@RequestParam(name = "expand", required = false, defaultValue = "false") @Nullable Boolean queryExpand`,
		`@RequestHeader(name = "X-Trace", required = true) String headerXTrace`,
		"var pathParameters$ = new BookRoutes.GetBookRequest.PathParameters(pathId);",
		"var request = new BookRoutes.GetBookRequest(pathParameters$, queryParameters$, headerParameters$);",
		"var result = instance.getBook(request);",
		"case BookRoutes.GetBookResponse.Ok o -> {",
		`headers.add("X-Version", objectMapper.writeValueAsString(o.headerXVersion()));`,
		`if (o.headerXNote() != null) headers.add("X-Note", o.headerXNote());`,
		"yield ResponseEntity.status(200).headers(headers).body(o.content());",
		"yield ResponseEntity.status(404).build();",
		`@PostMapping("")`,
		"@RequestBody com.example.books.Book content",
		"var request = new BookRoutes.CreateBookRequest(content);",
	} {
		assert.Contains(t, code, want)
	}
	assert.Equal(t, 2, strings.Count(code, "case BookRoutes.GetBookResponse."))
	assert.Equal(t, 1, strings.Count(code, "case BookRoutes.CreateBookResponse."))

	_, err = java.Format([]byte(code))
	assert.NoError(t, err)
}

func TestControllerFile_RequestMethodMapping(t *testing.T) {
	r := model.Routes("Health", "/health",
		model.Op("check", model.Operation("head", "", model.Resp("ok", model.Response(204)))),
	)
	code, err := NewContext("com.example").ControllerFile(r)
	require.NoError(t, err)
	assert.Contains(t, code, `@RequestMapping(value = "", method = RequestMethod.HEAD)`)
	assert.Contains(t, code, "import org.springframework.web.bind.annotation.RequestMethod;")
}

func TestControllerFile_UnsupportedMethod(t *testing.T) {
	r := model.Routes("Tunnel", "/tunnel",
		model.Op("open", model.Operation("CONNECT", "", model.Resp("ok", model.Response(200)))),
	)
	_, err := NewContext("com.example").ControllerFile(r)
	assert.ErrorIs(t, err, model.ErrUnknownModelKind)
}

func TestRouteFile_NoResponses(t *testing.T) {
	r := model.Routes("Empty", "/empty", model.Op("noop", model.Get("")))
	_, err := NewContext("com.example").RouteFile(r)
	assert.ErrorIs(t, err, ErrNoResponses)
}

func TestGenerator_Generate(t *testing.T) {
	app := &model.Application{Routes: []*model.RoutesModel{bookRoutes()}}
	set, err := NewGenerator(nil).Generate(context.Background(), app, config.Target{BaseNamespace: "com.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"com/example/books/Book.java",
		"com/example/books/BookRoutes.java",
		"com/example/books/BookRoutesController.java",
	}, set.Paths())
}
