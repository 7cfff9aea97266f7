package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddRejectsDuplicatePath(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.AddString("com/example/Book.java", "record Book() {}", LangJava))

	err := s.AddString("com/example/./Book.java", "record Other() {}", LangJava)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateOutputPath))
	assert.Contains(t, err.Error(), "com/example/Book.java")
	assert.Equal(t, 1, s.Len())
}

func TestSet_DuplicateDetectedBeforeAnyWrite(t *testing.T) {
	a := NewSet()
	require.NoError(t, a.AddString("openapi.json", "{}", LangJSON))
	b := NewSet()
	require.NoError(t, b.AddString("openapi.json", "{}", LangJSON))

	err := a.Merge(b)
	require.ErrorIs(t, err, ErrDuplicateOutputPath)

	sink := NewMemorySink()
	assert.Empty(t, sink.Files())
}

func TestSet_ArtifactsSortedByPath(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.AddString("b.json", "b", LangJSON))
	require.NoError(t, s.AddString("a/z.json", "z", LangJSON))
	require.NoError(t, s.AddString("a/a.json", "a", LangJSON))

	assert.Equal(t, []string{"a/a.json", "a/z.json", "b.json"}, s.Paths())
	assert.Equal(t, []PlannedFile{
		{Path: "a/a.json", Size: 1},
		{Path: "a/z.json", Size: 1},
		{Path: "b.json", Size: 1},
	}, s.Plan())
	assert.Equal(t, map[string]string{"a/a.json": "a", "a/z.json": "z", "b.json": "b"}, s.Map())

	got, ok := s.Get("a/z.json")
	require.True(t, ok)
	assert.Equal(t, "z", string(got.Content))
}

func TestSet_FlushFormatsAndFallsBack(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.AddString("Good.java", "class Good {}", LangJava))
	require.NoError(t, s.AddString("Bad.java", "class Bad {", LangJava))
	require.NoError(t, s.AddString("skip/README.md", "ignored", ""))

	var calls atomic.Int32
	formatter := FormatterFunc(func(lang string, code []byte) ([]byte, error) {
		calls.Add(1)
		if strings.HasSuffix(string(code), "{") {
			return nil, errors.New("unbalanced braces")
		}
		return []byte("// formatted\n" + string(code)), nil
	})

	sink := NewMemorySink()
	n, err := s.Flush(context.Background(), sink, FlushOptions{
		Formatter: formatter,
		Exclude:   func(p string) bool { return strings.HasPrefix(p, "skip/") },
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, "// formatted\nclass Good {}", string(sink.Get("Good.java")))
	assert.Equal(t, "class Bad {", string(sink.Get("Bad.java")))
	assert.Nil(t, sink.Get("skip/README.md"))
}

func TestSet_FlushReportsSinkErrors(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.AddString("ok.json", "{}", LangJSON))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Flush(ctx, NewMemorySink(), FlushOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilesystemSink_CreatesParentDirectories(t *testing.T) {
	root := t.TempDir()
	sink := NewFilesystemSink(root)

	s := NewSet()
	require.NoError(t, s.AddString("com/example/books/Book.java", "record Book() {}", LangJava))
	require.NoError(t, s.AddString("openapi.json", "{}", LangJSON))

	n, err := s.Flush(context.Background(), sink, FlushOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(root, "com", "example", "books", "Book.java"))
	require.NoError(t, err)
	assert.Equal(t, "record Book() {}", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "com", "example", "books"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFilesystemSink_OverwritesExistingFile(t *testing.T) {
	root := t.TempDir()
	sink := NewFilesystemSink(root)
	ctx := context.Background()

	require.NoError(t, sink.WriteFile(ctx, "a.txt", []byte("first")))
	require.NoError(t, sink.WriteFile(ctx, "a.txt", []byte("second")))

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "openapi.json", false},
		{"nested file", "com/example/Book.java", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"drive letter", "C:/x", true},
		{"parent", "../x", true},
		{"dot dot only", "..", true},
		{"unclean", "a//b", true},
		{"trailing slash", "a/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemorySink_RejectsInvalidPath(t *testing.T) {
	sink := NewMemorySink()
	err := sink.WriteFile(context.Background(), "../escape", []byte("x"))
	require.Error(t, err)
	assert.Empty(t, sink.Files())
}
