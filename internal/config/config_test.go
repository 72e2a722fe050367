package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/mcncl/jsonmerge/internal/merge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", pattern)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func boolPtr(b bool) *bool { return &b }

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "deep", cfg.Merge.Strategy)
	assert.False(t, cfg.Merge.DedupeArrays)
	assert.Empty(t, cfg.Merge.Resolutions)
	assert.Equal(t, NormalizeNone, cfg.Compare.NormalizeKeys)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.False(t, cfg.Dev.Debug)
	assert.Equal(t, "warn", cfg.Dev.LogLevel)
	assert.NoError(t, cfg.Validate())
	assert.Nil(t, cfg.KeyNormalizer())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
merge:
  strategy: shallow
  dedupe_arrays: true
  resolutions:
    "user.name": left
    "tags": "custom:[\"x\"]"
compare:
  normalize_keys: snake
  scope: "data.items"
  ignore_keys:
    - pattern: "^updated_at$"
      comment: "timestamps always differ"
output:
  indent: "\t"
  sort_keys: true
  format: unified
dev:
  debug: true
  log_level: debug
`
	cfg, err := LoadConfig(writeTempConfig(t, "config_test_*.yml", yamlContent))
	require.NoError(t, err)

	assert.Equal(t, merge.Shallow, cfg.MergeStrategy())
	assert.True(t, cfg.Merge.DedupeArrays)
	assert.Equal(t, "data.items", cfg.Compare.Scope)
	assert.Equal(t, "\t", cfg.Output.Indent)
	assert.True(t, cfg.Output.SortKeys)
	assert.Equal(t, FormatUnified, cfg.Output.Format)
	assert.True(t, cfg.Dev.Debug)

	resolutions, err := cfg.Resolutions()
	require.NoError(t, err)
	assert.Equal(t, merge.Resolutions{
		"user.name": merge.Left(),
		"tags":      merge.CustomValue(`["x"]`),
	}, resolutions)

	require.Len(t, cfg.Compare.IgnoreKeys, 1)
	assert.Equal(t, "timestamps always differ", cfg.Compare.IgnoreKeys[0].Comment)
	assert.True(t, cfg.ShouldIgnoreKey("updated_at"))
	assert.False(t, cfg.ShouldIgnoreKey("updated_at_utc"))

	normalize := cfg.KeyNormalizer()
	require.NotNil(t, normalize)
	assert.Equal(t, "user_name", normalize("userName"))
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	invalidYAML := `
merge:
  strategy: [unclosed array
`
	_, err := LoadConfig(writeTempConfig(t, "invalid_*.yml", invalidYAML))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_LoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{"strategy", "merge:\n  strategy: sideways\n", "merge.strategy"},
		{"resolution", "merge:\n  resolutions:\n    a: both\n", "invalid resolution for path 'a'"},
		{"normalizer", "compare:\n  normalize_keys: screaming\n", "compare.normalize_keys"},
		{"format", "output:\n  format: html\n", "output.format"},
		{"log level", "dev:\n  log_level: loud\n", "dev.log_level"},
		{"pattern", "compare:\n  ignore_keys:\n    - pattern: \"[bad\"\n", "failed to compile patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, "reject_*.yml", tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypeConfig, appErr.Type)
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_search_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	err = os.MkdirAll(nestedDir, 0o755)
	require.NoError(t, err)

	// Config file lives in the project root
	configPath := filepath.Join(tmpDir, "project", ".jsonmerge.yml")
	configContent := "merge:\n  strategy: replace\n"
	err = os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(nestedDir)
	require.NoError(t, err)

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), "strategy: replace")
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "no_config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	foundPath := FindConfigFile()
	assert.Empty(t, foundPath)
}

func TestIgnorePattern_MatchesKey(t *testing.T) {
	pattern := IgnorePattern{Pattern: "_at$"}

	assert.True(t, pattern.MatchesKey("created_at"))
	assert.True(t, pattern.MatchesKey("updated_at"))
	assert.False(t, pattern.MatchesKey("at_home"))
}

func TestIgnorePattern_InvalidPattern(t *testing.T) {
	pattern := IgnorePattern{Pattern: "[invalid regex"}

	// Should not panic and should return false for invalid regex
	assert.False(t, pattern.MatchesKey("anything"))
}

func TestConfig_KeyNormalizer(t *testing.T) {
	tests := []struct {
		mode     string
		input    string
		expected string
	}{
		{NormalizeSnake, "firstName", "first_name"},
		{NormalizeCamel, "first_name", "FirstName"},
		{NormalizeLowerCamel, "first_name", "firstName"},
		{NormalizeKebab, "firstName", "first-name"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Compare.NormalizeKeys = tt.mode
			normalize := cfg.KeyNormalizer()
			require.NotNil(t, normalize)
			assert.Equal(t, tt.expected, normalize(tt.input))
		})
	}
}

func TestConfig_ApplyOverrides(t *testing.T) {
	cfg := NewConfig()
	cfg.Merge.Resolutions = map[string]string{"a": "left", "b": "left"}

	err := cfg.ApplyOverrides(Overrides{
		Strategy:     "replace",
		DedupeArrays: boolPtr(true),
		Resolutions:  map[string]string{"b": "right"},
		Minify:       boolPtr(true),
		Format:       FormatJSON,
	})
	require.NoError(t, err)

	assert.Equal(t, merge.Replace, cfg.MergeStrategy())
	assert.True(t, cfg.Merge.DedupeArrays)
	assert.Equal(t, map[string]string{"a": "left", "b": "right"}, cfg.Merge.Resolutions)
	assert.True(t, cfg.Output.Minify)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	// Untouched settings keep their values
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.False(t, cfg.Output.SortKeys)
}

func TestConfig_ApplyOverridesValidates(t *testing.T) {
	cfg := NewConfig()
	err := cfg.ApplyOverrides(Overrides{Strategy: "sideways"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidStrategy))
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	configYAML := `
merge:
  strategy: shallow
output:
  indent: "    "
  sort_keys: true
`
	path := writeTempConfig(t, "precedence_test_*.yml", configYAML)

	cfg, err := LoadConfigWithCLI(path, Overrides{Strategy: "deep", SortKeys: boolPtr(false)})
	require.NoError(t, err)

	// Verify precedence: CLI > config file > defaults
	assert.Equal(t, merge.Deep, cfg.MergeStrategy()) // From CLI
	assert.False(t, cfg.Output.SortKeys)             // From CLI
	assert.Equal(t, "    ", cfg.Output.Indent)       // From config file
	assert.Equal(t, FormatText, cfg.Output.Format)   // Default value
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	path := writeTempConfig(t, "precedence_no_override_*.yml", "merge:\n  strategy: replace\n")

	cfg, err := LoadConfigWithCLI(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, merge.Replace, cfg.MergeStrategy())
	assert.Equal(t, "warn", cfg.Dev.LogLevel)
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", Overrides{NormalizeKeys: "kebab"})
	require.NoError(t, err)
	assert.Equal(t, NormalizeKebab, cfg.Compare.NormalizeKeys)
}
