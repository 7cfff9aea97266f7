package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/specgen/pkg/model"
)

func TestShouldIncludeOperation(t *testing.T) {
	tests := []struct {
		name         string
		originalTags []string
		includeTags  []string
		excludeTags  []string
		expected     bool
		description  string
	}{
		{
			name:         "no filters - include all",
			originalTags: []string{"users", "internal"},
			includeTags:  []string{},
			excludeTags:  []string{},
			expected:     true,
			description:  "When no filters are specified, all operations should be included",
		},
		{
			name:         "include filter matches first tag",
			originalTags: []string{"users", "internal"},
			includeTags:  []string{"users"},
			excludeTags:  []string{},
			expected:     true,
			description:  "Operation should be included when first tag matches include filter",
		},
		{
			name:         "include filter matches second tag",
			originalTags: []string{"internal", "users"},
			includeTags:  []string{"users"},
			excludeTags:  []string{},
			expected:     true,
			description:  "Operation should be included when any tag matches include filter (this is the main fix)",
		},
		{
			name:         "include filter matches none",
			originalTags: []string{"internal", "admin"},
			includeTags:  []string{"users"},
			excludeTags:  []string{},
			expected:     false,
			description:  "Operation should be excluded when no tags match include filter",
		},
		{
			name:         "exclude filter matches first tag",
			originalTags: []string{"internal", "users"},
			includeTags:  []string{},
			excludeTags:  []string{"internal"},
			expected:     false,
			description:  "Operation should be excluded when any tag matches exclude filter",
		},
		{
			name:         "exclude filter matches second tag",
			originalTags: []string{"users", "internal"},
			includeTags:  []string{},
			excludeTags:  []string{"internal"},
			expected:     false,
			description:  "Operation should be excluded when any tag matches exclude filter",
		},
		{
			name:         "include and exclude both match different tags",
			originalTags: []string{"users", "internal"},
			includeTags:  []string{"users"},
			excludeTags:  []string{"internal"},
			expected:     false,
			description:  "Exclude should take precedence over include",
		},
		{
			name:         "include matches, exclude doesn't",
			originalTags: []string{"users", "public"},
			includeTags:  []string{"users"},
			excludeTags:  []string{"internal"},
			expected:     true,
			description:  "Operation should be included when include matches and exclude doesn't",
		},
		{
			name:         "regex patterns work",
			originalTags: []string{"users_v1", "internal_api"},
			includeTags:  []string{"^users_.*"},
			excludeTags:  []string{".*_api$"},
			expected:     false,
			description:  "Regex patterns should work for both include and exclude",
		},
		{
			name:         "regex include matches",
			originalTags: []string{"users_v1", "public"},
			includeTags:  []string{"^users_.*"},
			excludeTags:  []string{},
			expected:     true,
			description:  "Regex include patterns should work",
		},
		{
			name:         "multiple include patterns - any match",
			originalTags: []string{"orders", "billing"},
			includeTags:  []string{"users", "orders"},
			excludeTags:  []string{},
			expected:     true,
			description:  "Operation should be included if any tag matches any include pattern",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			include, exclude, err := compileTagFilters(test.includeTags, test.excludeTags)
			require.NoError(t, err)
			assert.Equal(t, test.expected, shouldIncludeOperation(test.originalTags, include, exclude), test.description)
		})
	}
}

func TestCompileTagFilters_InvalidPattern(t *testing.T) {
	_, _, err := compileTagFilters([]string{"("}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "includeTags")
}

func taggedApp() *model.Application {
	book := model.Record("Book", model.Prop("title", model.String()))
	return &model.Application{
		Routes: []*model.RoutesModel{
			model.Routes("Books", "/books/{id}",
				model.Tags("books"),
				model.Op("get", model.Get("", model.Resp("ok", model.Response(200, model.Content(book))))),
				model.Op("purge", model.Delete("/purge", model.Tags("internal"), model.Resp("done", model.Response(204)))),
			),
			model.Routes("Health", "/health",
				model.Op("check", model.Get("", model.Resp("ok", model.Response(204)))),
			),
		},
		Models: []model.Model{model.Record("Standalone")},
	}
}

func TestFilterApplication(t *testing.T) {
	app := taggedApp()

	out, err := FilterApplication(app, nil, nil)
	require.NoError(t, err)
	assert.Same(t, app, out)

	out, err = FilterApplication(app, []string{"^books$"}, []string{"internal"})
	require.NoError(t, err)
	require.Len(t, out.Routes, 1)
	assert.Equal(t, "Books", out.Routes[0].ID())
	require.Len(t, out.Routes[0].Operations, 1)
	assert.Equal(t, "get", out.Routes[0].Operations[0].Name)
	assert.Len(t, out.Models, 1)
	assert.Len(t, app.Routes[0].Operations, 2, "the input application is left untouched")
}

func TestFilterApplication_UntaggedOperationsMatchMisc(t *testing.T) {
	out, err := FilterApplication(taggedApp(), []string{"misc"}, nil)
	require.NoError(t, err)
	require.Len(t, out.Routes, 1)
	assert.Equal(t, "Health", out.Routes[0].ID())
}
