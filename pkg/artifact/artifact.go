// Package artifact buffers generated files, rejects duplicate output paths
// before anything is written, and flushes the buffer to a Sink.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateOutputPath is returned when two artifacts compute the same path.
var ErrDuplicateOutputPath = errors.New("specgen: duplicate output path")

// Language tags understood by formatters.
const (
	LangJava = "java"
	LangJSON = "json"
	LangYAML = "yaml"
)

// Artifact is one generated file.
type Artifact struct {
	Path     string
	Content  []byte
	Language string
}

// PlannedFile describes a file Flush would write.
type PlannedFile struct {
	Path string
	Size int
}

// Set is an ordered collection of artifacts with unique paths.
type Set struct {
	items []Artifact
	index map[string]int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add buffers content under p. Paths are cleaned and slash-separated; a path
// already present fails with ErrDuplicateOutputPath.
func (s *Set) Add(p string, content []byte, lang string) error {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if _, ok := s.index[p]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOutputPath, p)
	}
	s.index[p] = len(s.items)
	s.items = append(s.items, Artifact{Path: p, Content: content, Language: lang})
	return nil
}

// AddString is Add for text content.
func (s *Set) AddString(p, text, lang string) error {
	return s.Add(p, []byte(text), lang)
}

// Merge adds every artifact of other, failing on the first duplicate path.
func (s *Set) Merge(other *Set) error {
	for _, a := range other.items {
		if err := s.Add(a.Path, a.Content, a.Language); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of artifacts.
func (s *Set) Len() int { return len(s.items) }

// Get returns the artifact stored under p.
func (s *Set) Get(p string) (Artifact, bool) {
	i, ok := s.index[path.Clean(p)]
	if !ok {
		return Artifact{}, false
	}
	return s.items[i], true
}

// Artifacts returns the artifacts sorted by path.
func (s *Set) Artifacts() []Artifact {
	out := append([]Artifact(nil), s.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Paths returns the artifact paths sorted.
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a.Path)
	}
	sort.Strings(out)
	return out
}

// Map returns path to text for every artifact.
func (s *Set) Map() map[string]string {
	out := make(map[string]string, len(s.items))
	for _, a := range s.items {
		out[a.Path] = string(a.Content)
	}
	return out
}

// Plan lists the files a Flush would write, sorted by path.
func (s *Set) Plan() []PlannedFile {
	arts := s.Artifacts()
	out := make([]PlannedFile, 0, len(arts))
	for _, a := range arts {
		out = append(out, PlannedFile{Path: a.Path, Size: len(a.Content)})
	}
	return out
}

// Formatter pretty-prints source text of a language.
type Formatter interface {
	Format(lang string, code []byte) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(lang string, code []byte) ([]byte, error)

func (f FormatterFunc) Format(lang string, code []byte) ([]byte, error) { return f(lang, code) }

// FlushOptions tunes Flush.
type FlushOptions struct {
	// Formatter is applied per artifact. A failing formatter leaves the
	// artifact unformatted.
	Formatter Formatter
	// Exclude skips matching paths.
	Exclude func(p string) bool
	Logger  *slog.Logger
}

// Flush formats and writes every artifact to sink, one goroutine per artifact,
// and returns the number of files written.
func (s *Set) Flush(ctx context.Context, sink Sink, opts FlushOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var todo []Artifact
	for _, a := range s.Artifacts() {
		if opts.Exclude != nil && opts.Exclude(a.Path) {
			logger.Debug("artifact excluded", "path", a.Path)
			continue
		}
		todo = append(todo, a)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, a := range todo {
		g.Go(func() error {
			content := a.Content
			if opts.Formatter != nil {
				formatted, err := opts.Formatter.Format(a.Language, content)
				if err != nil {
					logger.Warn("formatter failed, writing unformatted text", "path", a.Path, "error", err)
				} else {
					content = formatted
				}
			}
			if err := sink.WriteFile(ctx, a.Path, content); err != nil {
				return fmt.Errorf("write %s: %w", a.Path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(todo), nil
}
