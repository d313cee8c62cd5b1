package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
)

// ModelEnv names the environment variable that overrides the chat model.
const ModelEnv = "CARGO_SYNTAX_MODEL"

// DefaultModel is used when neither the environment nor the config names one.
const DefaultModel = "deepseek/deepseek-chat"

// Config holds all configuration options for cargo-syntax.
type Config struct {
	// Which files count as source
	Scan ScanConfig `koanf:"scan" toml:"scan" yaml:"scan"`

	// Extra exclusions on top of the build directory
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Defaults for the ci gate
	CI CIConfig `koanf:"ci" toml:"ci" yaml:"ci"`

	// Token count cache
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache"`

	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`

	// Chat API used by rewrite, review and models
	LLM LLMConfig `koanf:"llm" toml:"llm" yaml:"llm"`
}

// ScanConfig selects source files.
type ScanConfig struct {
	Extension string `koanf:"extension" toml:"extension" yaml:"extension"`
	BuildDir  string `koanf:"build_dir" toml:"build_dir" yaml:"build_dir"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// CIConfig holds thresholds for the ci command. Zero values disable a check.
type CIConfig struct {
	MaxTokens int     `koanf:"max_tokens" toml:"max_tokens" yaml:"max_tokens"`
	MaxTL     float64 `koanf:"max_tl" toml:"max_tl" yaml:"max_tl"`
	MinGrade  string  `koanf:"min_grade" toml:"min_grade" yaml:"min_grade"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color" yaml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose"`
}

// LLMConfig configures the OpenRouter client.
type LLMConfig struct {
	Model      string `koanf:"model" toml:"model" yaml:"model"`
	BaseURL    string `koanf:"base_url" toml:"base_url" yaml:"base_url"`
	Timeout    int    `koanf:"timeout" toml:"timeout" yaml:"timeout"` // seconds
	MaxRetries int    `koanf:"max_retries" toml:"max_retries" yaml:"max_retries"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extension: ".rs",
			BuildDir:  "target",
		},
		Exclude: ExcludeConfig{
			Patterns:  []string{},
			Gitignore: false,
		},
		CI: CIConfig{},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".cargo-syntax/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		LLM: LLMConfig{
			BaseURL:    "https://openrouter.ai/api/v1",
			Timeout:    120,
			MaxRetries: 3,
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are searched in order inside each of searchDirs.
var configNames = []string{
	"cargo-syntax.toml",
	"cargo-syntax.yaml",
	"cargo-syntax.yml",
	"cargo-syntax.json",
	".cargo-syntax.toml",
	".cargo-syntax.yaml",
	".cargo-syntax.yml",
	".cargo-syntax.json",
}

var searchDirs = []string{".", ".cargo-syntax"}

// Find returns the first config file found under base, or "".
func Find(base string) string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(base, dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	base string
}

// WithPath loads an explicit config file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithBaseDir searches for config files relative to dir.
func WithBaseDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.base = dir
	}
}

// LoadResult is a validated config and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadConfig loads, validates and returns the effective configuration.
// An explicit path that does not exist is an error; a missing searched
// file falls back to defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{base: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = Find(o.base)
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// ValidationError lists every invalid setting found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate rejects values the commands cannot work with.
func (c *Config) Validate() error {
	var problems []string

	if !strings.HasPrefix(c.Scan.Extension, ".") || len(c.Scan.Extension) < 2 {
		problems = append(problems, fmt.Sprintf("scan.extension %q must start with '.'", c.Scan.Extension))
	}
	if c.Scan.BuildDir == "" || strings.ContainsAny(c.Scan.BuildDir, `/\`) {
		problems = append(problems, fmt.Sprintf("scan.build_dir %q must be a single directory name", c.Scan.BuildDir))
	}
	if c.CI.MaxTokens < 0 {
		problems = append(problems, "ci.max_tokens must not be negative")
	}
	if c.CI.MaxTL < 0 {
		problems = append(problems, "ci.max_tl must not be negative")
	}
	if c.CI.MinGrade != "" && !grade.Valid(c.CI.MinGrade) {
		problems = append(problems, fmt.Sprintf("ci.min_grade %q is not one of A+, A, B, C, D", c.CI.MinGrade))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, "cache.ttl must not be negative")
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "toon":
	default:
		problems = append(problems, fmt.Sprintf("output.format %q must be text, json, markdown or toon", c.Output.Format))
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, "llm.timeout must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		problems = append(problems, "llm.max_retries must not be negative")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Model resolves the chat model: environment first, then config, then the
// built-in default.
func (c *Config) Model() string {
	if m := os.Getenv(ModelEnv); m != "" {
		return m
	}
	if c.LLM.Model != "" {
		return c.LLM.Model
	}
	return DefaultModel
}
