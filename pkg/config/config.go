package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"
)

// Target types.
const (
	TypeJSONSchema = "jsonschema"
	TypeOpenAPI    = "openapi"
	TypeJava       = "java"
	TypeSpring     = "spring"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SPECGEN_"

// Config represents the complete configuration for a generation run
type Config struct {
	OutDir        string   `yaml:"outDir" env:"OUT_DIR"`
	BaseNamespace string   `yaml:"baseNamespace" env:"BASE_NAMESPACE"`
	Verbose       bool     `yaml:"verbose" env:"VERBOSE"`
	Info          Info     `yaml:"info"`
	Servers       []Server `yaml:"servers" validate:"dive"`
	Targets       []Target `yaml:"targets" validate:"required,min=1,dive"`
}

// Info documents the generated API.
type Info struct {
	Title       string `yaml:"title" env:"INFO_TITLE"`
	Version     string `yaml:"version" env:"INFO_VERSION"`
	Description string `yaml:"description"`
}

// Server is an OpenAPI server entry.
type Server struct {
	URL         string `yaml:"url" validate:"required"`
	Description string `yaml:"description"`
}

// Target represents configuration for a single generator run
type Target struct {
	Type string `yaml:"type" validate:"required,oneof=jsonschema openapi java spring"`
	// Name identifies the target on the command line. Defaults to Type.
	Name   string `yaml:"name"`
	OutDir string `yaml:"outDir"`
	// FileName is the document name of the openapi target. A .yaml or .yml
	// extension selects YAML output.
	FileName      string `yaml:"fileName"`
	BaseNamespace string `yaml:"baseNamespace"`
	// IncludeTags and ExcludeTags are regular expressions matched against
	// route and operation tags.
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`
	// ExcludeFiles lists paths relative to OutDir that are never written.
	// A trailing directory name excludes everything below it.
	ExcludeFiles []string `yaml:"exclude"`
	// PreCommand and PostCommand run in OutDir before and after generation.
	// Uses Docker Compose array format: ["google-java-format", "-i", "Book.java"]
	PreCommand  []string `yaml:"preCommand"`
	PostCommand []string `yaml:"postCommand"`
	JavaRelease string   `yaml:"javaRelease"`
	SortSchemas bool     `yaml:"sortSchemas"`
	// RelaxedIDs keeps the first model bound to an id and warns about later
	// different ones instead of failing.
	RelaxedIDs bool `yaml:"relaxedIds"`
	// SkipFormat writes generated sources without the formatter pass.
	SkipFormat bool `yaml:"skipFormat"`

	Info    Info     `yaml:"info"`
	Servers []Server `yaml:"servers" validate:"dive"`
}

// Default values applied below the configuration file.
var defaults = Config{
	OutDir:        "generated",
	BaseNamespace: "com.example",
	Info:          Info{Title: "API", Version: "v1"},
}

// minJavaRelease is the lowest Java release each Java target can emit for.
var minJavaRelease = map[string]string{
	TypeJava:   ">= 17",
	TypeSpring: ">= 21",
}

var validate = validator.New()

// GetPreCommand returns the pre-generation command to execute.
func (t *Target) GetPreCommand() []string {
	return t.PreCommand
}

// GetPostCommand returns the post-generation command to execute.
func (t *Target) GetPostCommand() []string {
	return t.PostCommand
}

// DocumentName returns the openapi file name, defaulting to openapi.json.
func (t *Target) DocumentName() string {
	if t.FileName == "" {
		return "openapi.json"
	}
	return t.FileName
}

// IsYAML reports whether the openapi document is written as YAML.
func (t *Target) IsYAML() bool {
	ext := strings.ToLower(path.Ext(t.DocumentName()))
	return ext == ".yaml" || ext == ".yml"
}

// ShouldExcludeFile checks if a generated path, relative to OutDir and
// slash-separated, is listed in ExcludeFiles.
func (t *Target) ShouldExcludeFile(relPath string) bool {
	if len(t.ExcludeFiles) == 0 {
		return false
	}
	relPath = path.Clean(filepath.ToSlash(relPath))
	for _, excludePattern := range t.ExcludeFiles {
		normalizedExclude := strings.TrimSuffix(filepath.ToSlash(excludePattern), "/")
		if normalizedExclude == "" {
			continue
		}
		if relPath == normalizedExclude {
			return true
		}
		// "src" also excludes "src/Book.java"
		if strings.HasPrefix(relPath, normalizedExclude+"/") {
			return true
		}
	}
	return false
}

// Load loads configuration from a YAML file, applies SPECGEN_ environment
// overrides and defaults, and validates the result.
func Load(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return cfg, nil
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve fills defaults, pushes the top-level settings down into every
// target, absolutizes output directories and validates the configuration.
func (c *Config) Resolve() error {
	if err := mergo.Merge(c, defaults); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	names := make(map[string]bool, len(c.Targets))
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Name == "" {
			t.Name = t.Type
		}
		if names[t.Name] {
			return fmt.Errorf("targets[%d]: duplicate target name %q", i, t.Name)
		}
		names[t.Name] = true

		inherited := Target{
			OutDir:        filepath.Join(c.OutDir, t.Name),
			BaseNamespace: c.BaseNamespace,
			Info:          c.Info,
			Servers:       c.Servers,
		}
		if err := mergo.Merge(t, inherited); err != nil {
			return fmt.Errorf("targets[%d]: %w", i, err)
		}
		if !filepath.IsAbs(t.OutDir) {
			abs, err := filepath.Abs(t.OutDir)
			if err != nil {
				return fmt.Errorf("targets[%d]: %w", i, err)
			}
			t.OutDir = abs
		}
		if err := t.checkJavaRelease(); err != nil {
			return fmt.Errorf("targets[%d]: %w", i, err)
		}
	}
	return nil
}

func (t *Target) checkJavaRelease() error {
	constraint, ok := minJavaRelease[t.Type]
	if !ok || t.JavaRelease == "" {
		return nil
	}
	v, err := semver.NewVersion(t.JavaRelease)
	if err != nil {
		return fmt.Errorf("javaRelease %q: %w", t.JavaRelease, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("javaRelease %s does not satisfy %s required by the %s target", t.JavaRelease, constraint, t.Type)
	}
	return nil
}

// Target returns the target called name.
func (c *Config) Target(name string) (*Target, error) {
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i], nil
		}
	}
	return nil, errors.New("unknown target: " + name)
}
