package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/specgen/pkg/model"
)

func sampleApp() *model.Application {
	book := model.Record("lib.Book", model.Prop("title", model.String()))
	return model.NewApplication(model.Routes("lib.BookRoutes", "/books",
		model.Op("list", model.Get("", model.Resp("ok", model.Response(200, model.Content(model.Array(book)))))),
	))
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "specgen.yaml")
	cfg := "outDir: " + filepath.Join(dir, "out") + "\ntargets:\n  - type: openapi\n  - type: java\n"
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o644))
	return p
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	var stderr bytes.Buffer
	root := NewRootCommand("specgen", sampleApp())
	root.SetErr(&stderr)
	root.SetArgs([]string{"generate", "--config", cfg, "--target", "java"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.FileExists(t, filepath.Join(dir, "out", "java", "com", "example", "lib", "Book.java"))
	assert.NoFileExists(t, filepath.Join(dir, "out", "openapi", "openapi.json"))
	assert.Contains(t, stderr.String(), "generation finished")
}

func TestGenerateCommand_OutOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	other := filepath.Join(dir, "elsewhere")

	root := NewRootCommand("specgen", sampleApp())
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "-c", cfg, "--out", other, "--target", "openapi"})
	require.NoError(t, root.Execute())
	assert.FileExists(t, filepath.Join(other, "openapi", "openapi.json"))
}

func TestRootCommand_WithoutApplication(t *testing.T) {
	root := NewRootCommand("specgen", nil)
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.False(t, names["generate"])
	assert.True(t, names["validate"])
	assert.True(t, names["serve"])
}

func TestRunValidate(t *testing.T) {
	assert.Error(t, RunValidate(""))
	assert.Error(t, RunValidate(filepath.Join(t.TempDir(), "missing.json")))

	p := filepath.Join(t.TempDir(), "openapi.json")
	doc := `{"openapi":"3.0.3","info":{"title":"T","version":"1"},"paths":{}}`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	assert.NoError(t, RunValidate(p))
}

func TestReadDocument_ConvertsYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(p, []byte("openapi: 3.1.0\ninfo:\n  title: T\n"), 0o644))
	data, err := readDocument(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])

	bad := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = readDocument(bad)
	assert.Error(t, err)
}
