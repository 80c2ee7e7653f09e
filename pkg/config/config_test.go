package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "java", cfg.Preset)
	assert.Equal(t, []string{".java"}, cfg.Extensions)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestParseMergesOverDefaults(t *testing.T) {
	content := `
preset: cpp
extra_keywords: [size_t, uint8_t]
extensions: [.hpp, .h]
ignore: ["third_party/*"]
workers: 3
mapping_format: cbor
blind: true
llm:
  model: codellama:13b
  timeout: 30
`
	cfg, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "cpp", cfg.Preset)
	assert.Equal(t, []string{".hpp", ".h"}, cfg.Extensions)
	assert.Equal(t, []string{"third_party/*"}, cfg.Ignore)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "cbor", cfg.MappingFormat)
	assert.True(t, cfg.Blind)

	assert.Equal(t, "codellama:13b", cfg.LLM.Model)
	assert.Equal(t, "ollama", cfg.LLM.Provider, "unset llm fields keep defaults")
	assert.Equal(t, 30*time.Second, cfg.ProviderConfig().Timeout)

	set, err := cfg.KeywordSet()
	require.NoError(t, err)
	assert.True(t, set.Contains("template"))
	assert.True(t, set.Contains("size_t"))
	assert.False(t, set.Contains("String"))
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse([]byte("# nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestExplicitKeywordsReplacePreset(t *testing.T) {
	cfg, err := Parse([]byte("keywords: [int, non-sealed]\nextra_keywords: [var]\n"))
	require.NoError(t, err)

	set, err := cfg.KeywordSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "non-sealed", "var"}, set.Words())
	assert.True(t, set.PreservesNonSealed())
}

func TestUnknownPresetIsReported(t *testing.T) {
	cfg, err := Parse([]byte("preset: jva\n"))
	require.NoError(t, err)

	_, err = cfg.KeywordSet()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "java"`)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown key", "presets: java\n", "presets"},
		{"wrong type", "workers: many\n", "/workers"},
		{"negative workers", "workers: -1\n", "/workers"},
		{"bad extension", "extensions: [java]\n", "/extensions/0"},
		{"bad mapping format", "mapping_format: xml\n", "/mapping_format"},
		{"unknown llm key", "llm:\n  host: localhost\n", "host"},
		{"temperature out of range", "llm:\n  temperature: 3\n", "/llm/temperature"},
		{"malformed yaml", "preset: [java\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := Discover(dir)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	cfg := Default()
	cfg.Preset = "c"
	cfg.MappingFormat = "json"
	require.NoError(t, Write(path, cfg, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# .anonymizer.yaml configuration file")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	err = Write(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NoError(t, Write(path, cfg, true))
}

func TestDiscoverFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(file, []byte("class Main {}"), 0644))

	assert.Equal(t, filepath.Join(dir, FileName), Discover(file))
}
