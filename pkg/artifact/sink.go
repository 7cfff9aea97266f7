package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Sink persists generated files. Implementations must be safe for concurrent use.
type Sink interface {
	// WriteFile writes content to the slash-separated relative path p.
	WriteFile(ctx context.Context, p string, content []byte) error
}

// FilesystemSink writes below Root, creating parent directories as needed.
type FilesystemSink struct {
	Root string
	Mode os.FileMode
}

// NewFilesystemSink returns a sink rooted at root writing 0644 files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644}
}

// WriteFile writes through a temporary file in the target directory and renames
// it into place, so readers never observe a partial artifact.
func (s *FilesystemSink) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := ValidatePath(p); err != nil {
		return fmt.Errorf("invalid path %q: %w", p, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(p))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(full)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return fmt.Errorf("path escapes root directory: %q", p)
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".specgen-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %q: %w", p, err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// MemorySink keeps generated files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := ValidatePath(p); err != nil {
		return fmt.Errorf("invalid path %q: %w", p, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = append([]byte(nil), content...)
	return nil
}

// Files returns a copy of every stored file.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.files))
	for p, c := range s.files {
		out[p] = append([]byte(nil), c...)
	}
	return out
}

// Get returns one file, or nil when absent.
func (s *MemorySink) Get(p string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.files[p]
	if !ok {
		return nil
	}
	return append([]byte(nil), c...)
}

// ValidatePath accepts clean, relative, slash-separated paths that stay inside
// the sink root.
func ValidatePath(p string) error {
	if p == "" {
		return errors.New("path is empty")
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) || (len(p) >= 2 && p[1] == ':') {
		return errors.New("absolute paths not allowed")
	}
	cleaned := path.Clean(p)
	if cleaned != p {
		return fmt.Errorf("path is not clean (expected %q)", cleaned)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errors.New("path traversal not allowed")
	}
	return nil
}
