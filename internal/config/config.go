package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/merge"
)

// Config represents the complete configuration for jsonmerge
type Config struct {
	Merge   MergeConfig   `yaml:"merge"`
	Compare CompareConfig `yaml:"compare"`
	Output  OutputConfig  `yaml:"output"`
	Dev     DevConfig     `yaml:"dev"`
}

// MergeConfig controls how documents are merged
type MergeConfig struct {
	Strategy     string `yaml:"strategy"`
	DedupeArrays bool   `yaml:"dedupe_arrays"`
	// Resolutions maps a rendered path to left, right or custom:<json>.
	Resolutions map[string]string `yaml:"resolutions"`
}

// CompareConfig controls how documents are prepared before comparison
type CompareConfig struct {
	NormalizeKeys string          `yaml:"normalize_keys"`
	Scope         string          `yaml:"scope"`
	IgnoreKeys    []IgnorePattern `yaml:"ignore_keys"`
}

// IgnorePattern drops every object key matching Pattern from both documents
type IgnorePattern struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Indent   string `yaml:"indent"`
	Minify   bool   `yaml:"minify"`
	SortKeys bool   `yaml:"sort_keys"`
	Format   string `yaml:"format"`
	Color    bool   `yaml:"color"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
}

// Supported key normalizers
const (
	NormalizeNone       = "none"
	NormalizeSnake      = "snake"
	NormalizeCamel      = "camel"
	NormalizeLowerCamel = "lower_camel"
	NormalizeKebab      = "kebab"
)

// Supported diff output formats
const (
	FormatText    = "text"
	FormatUnified = "unified"
	FormatJSON    = "json"
)

var normalizers = map[string]func(string) string{
	NormalizeSnake:      strcase.ToSnake,
	NormalizeCamel:      strcase.ToCamel,
	NormalizeLowerCamel: strcase.ToLowerCamel,
	NormalizeKebab:      strcase.ToKebab,
}

var logLevels = []string{"debug", "info", "warn", "error"}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Merge: MergeConfig{
			Strategy:     merge.Deep.String(),
			DedupeArrays: false,
			Resolutions:  make(map[string]string),
		},
		Compare: CompareConfig{
			NormalizeKeys: NormalizeNone,
			IgnoreKeys:    []IgnorePattern{},
		},
		Output: OutputConfig{
			Indent: "  ",
			Format: FormatText,
		},
		Dev: DevConfig{
			Debug:    false,
			LogLevel: "warn",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, errors.NewConfigError("failed to compile patterns", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonmerge.yml", ".jsonmerge.yaml", "jsonmerge.yml", "jsonmerge.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Compare.IgnoreKeys {
		pattern := &c.Compare.IgnoreKeys[i]
		regex, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return fmt.Errorf("invalid ignore_keys pattern '%s': %w", pattern.Pattern, err)
		}
		pattern.regex = regex
	}
	return nil
}

// MatchesKey checks if this pattern matches the given object key
func (p *IgnorePattern) MatchesKey(key string) bool {
	if p.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return false
		}
		p.regex = regex
	}
	return p.regex.MatchString(key)
}

// ShouldIgnoreKey reports whether any ignore pattern matches key
func (c *Config) ShouldIgnoreKey(key string) bool {
	for i := range c.Compare.IgnoreKeys {
		if c.Compare.IgnoreKeys[i].MatchesKey(key) {
			return true
		}
	}
	return false
}

// Validate checks enumerated settings and resolution syntax
func (c *Config) Validate() error {
	if _, err := merge.ParseStrategy(c.Merge.Strategy); err != nil {
		return errors.NewConfigError(fmt.Sprintf("invalid merge.strategy %q", c.Merge.Strategy), err)
	}
	if _, err := c.Resolutions(); err != nil {
		return err
	}

	normalize := strings.ToLower(c.Compare.NormalizeKeys)
	if _, ok := normalizers[normalize]; !ok && normalize != "" && normalize != NormalizeNone {
		return errors.NewConfigError(
			fmt.Sprintf("invalid compare.normalize_keys %q (expected none, snake, camel, lower_camel or kebab)", c.Compare.NormalizeKeys), nil)
	}

	switch c.Output.Format {
	case "", FormatText, FormatUnified, FormatJSON:
	default:
		return errors.NewConfigError(
			fmt.Sprintf("invalid output.format %q (expected text, unified or json)", c.Output.Format), nil)
	}

	if c.Dev.LogLevel != "" && !contains(logLevels, strings.ToLower(c.Dev.LogLevel)) {
		return errors.NewConfigError(
			fmt.Sprintf("invalid dev.log_level %q (expected debug, info, warn or error)", c.Dev.LogLevel), nil)
	}

	return nil
}

// MergeStrategy returns the configured strategy
func (c *Config) MergeStrategy() merge.Strategy {
	strategy, err := merge.ParseStrategy(c.Merge.Strategy)
	if err != nil {
		return merge.Deep
	}
	return strategy
}

// Resolutions parses the configured per-path resolutions
func (c *Config) Resolutions() (merge.Resolutions, error) {
	out := make(merge.Resolutions, len(c.Merge.Resolutions))
	for p, raw := range c.Merge.Resolutions {
		r, err := merge.ParseResolution(raw)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("invalid resolution for path '%s'", p), err)
		}
		out[p] = r
	}
	return out, nil
}

// KeyNormalizer returns the configured key transform, or nil when keys are
// compared as written
func (c *Config) KeyNormalizer() func(string) string {
	return normalizers[strings.ToLower(c.Compare.NormalizeKeys)]
}

// Overrides carries CLI flags. Empty strings and nil pointers mean the flag
// was not given.
type Overrides struct {
	Strategy      string
	DedupeArrays  *bool
	Resolutions   map[string]string
	NormalizeKeys string
	Scope         string
	Indent        string
	Minify        *bool
	SortKeys      *bool
	Format        string
	Debug         *bool
	LogLevel      string
}

// ApplyOverrides merges CLI overrides into the config. Resolutions are added
// to, and replace, those from the file.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Strategy != "" {
		c.Merge.Strategy = o.Strategy
	}
	if o.DedupeArrays != nil {
		c.Merge.DedupeArrays = *o.DedupeArrays
	}
	if len(o.Resolutions) > 0 && c.Merge.Resolutions == nil {
		c.Merge.Resolutions = make(map[string]string, len(o.Resolutions))
	}
	for p, r := range o.Resolutions {
		c.Merge.Resolutions[p] = r
	}
	if o.NormalizeKeys != "" {
		c.Compare.NormalizeKeys = o.NormalizeKeys
	}
	if o.Scope != "" {
		c.Compare.Scope = o.Scope
	}
	if o.Indent != "" {
		c.Output.Indent = o.Indent
	}
	if o.Minify != nil {
		c.Output.Minify = *o.Minify
	}
	if o.SortKeys != nil {
		c.Output.SortKeys = *o.SortKeys
	}
	if o.Format != "" {
		c.Output.Format = o.Format
	}
	if o.Debug != nil {
		c.Dev.Debug = *o.Debug
	}
	if o.LogLevel != "" {
		c.Dev.LogLevel = o.LogLevel
	}

	return c.Validate()
}

// LoadConfigWithCLI loads the config file, if any, then applies CLI overrides
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, err
	}

	return cfg, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
