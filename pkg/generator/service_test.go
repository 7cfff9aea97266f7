package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
)

func TestRegistry_GetAvailableTypes(t *testing.T) {
	s := NewService(nil)
	assert.Equal(t, []string{"java", "jsonschema", "openapi", "spring"}, s.GetRegistry().GetAvailableTypes())

	_, ok := s.GetRegistry().Get("typescript")
	assert.False(t, ok)
}

func resolvedConfig(t *testing.T, targets ...config.Target) *config.Config {
	t.Helper()
	cfg := &config.Config{OutDir: t.TempDir(), Targets: targets}
	require.NoError(t, cfg.Resolve())
	return cfg
}

func TestService_GenerateToMemory(t *testing.T) {
	cfg := resolvedConfig(t,
		config.Target{Type: config.TypeOpenAPI},
		config.Target{Type: config.TypeJava, ExcludeFiles: []string{"com/example/Standalone.java"}},
	)
	sinks := map[string]*artifact.MemorySink{}
	s := NewService(nil).WithSink(func(target config.Target) artifact.Sink {
		sinks[target.Name] = artifact.NewMemorySink()
		return sinks[target.Name]
	})

	results, err := s.Generate(context.Background(), cfg, taggedApp(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "openapi", results[0].Target)
	assert.Equal(t, 1, results[0].Written)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(sinks["openapi"].Get("openapi.json"), &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])
	assert.Contains(t, doc["paths"], "/books/{id}")

	assert.Equal(t, "java", results[1].Target)
	assert.Equal(t, 1, results[1].Written)
	assert.NotNil(t, sinks["java"].Get("com/example/Book.java"))
	assert.Nil(t, sinks["java"].Get("com/example/Standalone.java"))
}

func TestService_GenerateSingleTarget(t *testing.T) {
	cfg := resolvedConfig(t,
		config.Target{Type: config.TypeOpenAPI, IncludeTags: []string{"misc"}},
		config.Target{Type: config.TypeJSONSchema},
	)
	results, err := NewService(nil).Generate(context.Background(), cfg, taggedApp(), "openapi")
	require.NoError(t, err)
	require.Len(t, results, 1)

	data, err := os.ReadFile(filepath.Join(cfg.Targets[0].OutDir, "openapi.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"/health"`)
	assert.NotContains(t, string(data), `"/books/{id}"`)

	_, err = NewService(nil).Generate(context.Background(), cfg, taggedApp(), "nope")
	assert.Error(t, err)
}

func TestService_PostCommandFailureIsReported(t *testing.T) {
	cfg := resolvedConfig(t, config.Target{Type: config.TypeJSONSchema, PostCommand: []string{"specgen-command-that-does-not-exist"}})
	_, err := NewService(nil).Generate(context.Background(), cfg, taggedApp(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post-command")
}

func TestService_SharedOutDirOverlapFailsBeforeWriting(t *testing.T) {
	shared := filepath.Join(t.TempDir(), "src")
	cfg := resolvedConfig(t,
		config.Target{Type: config.TypeJava, OutDir: shared},
		config.Target{Type: config.TypeSpring, OutDir: shared},
	)
	_, err := NewService(nil).Generate(context.Background(), cfg, taggedApp(), "")
	require.ErrorIs(t, err, artifact.ErrDuplicateOutputPath)
	assert.Contains(t, err.Error(), "java and spring")
	assert.NoDirExists(t, shared)

	// Excluded files are never written, so they cannot collide.
	cfg.Targets[1].ExcludeFiles = []string{"com"}
	_, err = NewService(nil).Generate(context.Background(), cfg, taggedApp(), "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(shared, "com", "example", "Book.java"))
}
