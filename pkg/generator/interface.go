package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blimu-dev/specgen/pkg/artifact"
	"github.com/blimu-dev/specgen/pkg/config"
	"github.com/blimu-dev/specgen/pkg/generator/java"
	"github.com/blimu-dev/specgen/pkg/generator/jsonschema"
	"github.com/blimu-dev/specgen/pkg/generator/openapi"
	"github.com/blimu-dev/specgen/pkg/generator/spring"
	"github.com/blimu-dev/specgen/pkg/model"
)

// Generator defines the interface for target generators
type Generator interface {
	// Generate renders the artifacts of one target. Nothing is written.
	Generate(ctx context.Context, app *model.Application, target config.Target) (*artifact.Set, error)
	// GetType returns the type identifier for this generator (e.g., "openapi")
	GetType() string
}

// Registry manages available generators
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(gen Generator) {
	r.generators[gen.GetType()] = gen
}

// Get retrieves a generator by type
func (r *Registry) Get(genType string) (Generator, bool) {
	gen, exists := r.generators[genType]
	return gen, exists
}

// GetAvailableTypes returns all registered generator types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Result reports one generated target.
type Result struct {
	Target  string
	OutDir  string
	Written int
}

// Service provides high-level generation functionality
type Service struct {
	registry *Registry
	logger   *slog.Logger
	sink     func(target config.Target) artifact.Sink
}

// NewService creates a new generator service with default generators
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry()
	// Register default generators
	registry.Register(jsonschema.NewGenerator(logger))
	registry.Register(openapi.NewGenerator(logger))
	registry.Register(java.NewGenerator(logger))
	registry.Register(spring.NewGenerator(logger))
	return NewServiceWithRegistry(registry, logger)
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(registry *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		logger:   logger,
		sink: func(target config.Target) artifact.Sink {
			return artifact.NewFilesystemSink(target.OutDir)
		},
	}
}

// WithSink replaces the filesystem sink, e.g. with an artifact.MemorySink.
func (s *Service) WithSink(sink func(target config.Target) artifact.Sink) *Service {
	s.sink = sink
	return s
}

// GetRegistry returns the generator registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Generate runs every target of cfg, or only the one named onlyTarget.
// Every selected target is rendered before the first file is written, and a
// file claimed by two targets sharing an output directory fails the run with
// artifact.ErrDuplicateOutputPath.
func (s *Service) Generate(ctx context.Context, cfg *config.Config, app *model.Application, onlyTarget string) ([]Result, error) {
	var rendered []renderedTarget
	for _, target := range cfg.Targets {
		if onlyTarget != "" && target.Name != onlyTarget {
			continue
		}
		set, err := s.render(ctx, target, app)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", target.Name, err)
		}
		rendered = append(rendered, renderedTarget{target: target, set: set})
	}
	if onlyTarget != "" && len(rendered) == 0 {
		return nil, fmt.Errorf("unknown target: %s", onlyTarget)
	}
	if err := checkOverlap(rendered); err != nil {
		return nil, err
	}

	var results []Result
	for _, r := range rendered {
		res, err := s.write(ctx, r.target, r.set)
		if err != nil {
			return results, fmt.Errorf("target %s: %w", r.target.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// GenerateTarget filters app by the target's tags, renders it and flushes the
// artifacts, running the pre and post commands around the write.
func (s *Service) GenerateTarget(ctx context.Context, target config.Target, app *model.Application) (Result, error) {
	set, err := s.render(ctx, target, app)
	if err != nil {
		return Result{Target: target.Name, OutDir: target.OutDir}, err
	}
	return s.write(ctx, target, set)
}

type renderedTarget struct {
	target config.Target
	set    *artifact.Set
}

func (s *Service) render(ctx context.Context, target config.Target, app *model.Application) (*artifact.Set, error) {
	gen, exists := s.registry.Get(target.Type)
	if !exists {
		return nil, fmt.Errorf("unsupported target type: %s", target.Type)
	}
	filtered, err := FilterApplication(app, target.IncludeTags, target.ExcludeTags)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, filtered, target)
}

// checkOverlap rejects files that more than one target would write.
func checkOverlap(rendered []renderedTarget) error {
	owners := make(map[string]string)
	for _, r := range rendered {
		for _, p := range r.set.Paths() {
			if r.target.ShouldExcludeFile(p) {
				continue
			}
			full := filepath.Join(r.target.OutDir, filepath.FromSlash(p))
			if owner, ok := owners[full]; ok {
				return fmt.Errorf("%w: %s is written by targets %s and %s", artifact.ErrDuplicateOutputPath, full, owner, r.target.Name)
			}
			owners[full] = r.target.Name
		}
	}
	return nil
}

func (s *Service) write(ctx context.Context, target config.Target, set *artifact.Set) (Result, error) {
	res := Result{Target: target.Name, OutDir: target.OutDir}

	// Commands run inside the output directory, so it must exist first
	if len(target.PreCommand) > 0 || len(target.PostCommand) > 0 {
		if err := os.MkdirAll(target.OutDir, 0o755); err != nil {
			return res, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := s.executeCommand(ctx, target.GetPreCommand(), target.OutDir, "pre-command"); err != nil {
		return res, err
	}

	opts := artifact.FlushOptions{Exclude: target.ShouldExcludeFile, Logger: s.logger}
	if !target.SkipFormat {
		opts.Formatter = java.Formatter
	}
	var err error
	res.Written, err = set.Flush(ctx, s.sink(target), opts)
	if err != nil {
		return res, err
	}

	if err := s.executeCommand(ctx, target.GetPostCommand(), target.OutDir, "post-command"); err != nil {
		return res, err
	}
	s.logger.Info("artifacts written", "target", target.Name, "type", target.Type, "count", res.Written, "outDir", target.OutDir)
	return res, nil
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(ctx context.Context, command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil // Skip empty commands
	}

	// Create command with first element as executable and rest as arguments
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir      // Execute in the specified directory
	cmd.Stdout = os.Stdout // Forward stdout to see command output
	cmd.Stderr = os.Stderr // Forward stderr to see errors

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, strings.Join(command, " "), err)
	}
	return nil
}
