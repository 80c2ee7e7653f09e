// Package config loads and validates the .anonymizer.yaml project file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v2"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/keywords"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/llm"
)

// FileName is the project configuration file looked up in a target directory.
const FileName = ".anonymizer.yaml"

//go:embed schema.json
var schemaJSON string

// Config is the decoded project file. Zero values mean "use the default".
type Config struct {
	Preset        string    `yaml:"preset,omitempty"`
	Keywords      []string  `yaml:"keywords,omitempty"`
	ExtraKeywords []string  `yaml:"extra_keywords,omitempty"`
	Extensions    []string  `yaml:"extensions,omitempty"`
	Ignore        []string  `yaml:"ignore,omitempty"`
	Workers       int       `yaml:"workers,omitempty"`
	MappingFormat string    `yaml:"mapping_format,omitempty"`
	Blind         bool      `yaml:"blind,omitempty"`
	LLM           LLMConfig `yaml:"llm,omitempty"`
}

// LLMConfig is the llm block of the project file. Timeout is in seconds.
type LLMConfig struct {
	Provider    string  `yaml:"provider,omitempty"`
	URL         string  `yaml:"url,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	TopP        float64 `yaml:"top_p,omitempty"`
	NumCtx      int     `yaml:"num_ctx,omitempty"`
	Timeout     int     `yaml:"timeout,omitempty"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	defaults := llm.DefaultConfig()
	return &Config{
		Preset:     keywords.DefaultPreset,
		Extensions: []string{".java"},
		Ignore:     []string{},
		Workers:    runtime.NumCPU(),
		LLM: LLMConfig{
			Provider:    defaults.Provider,
			URL:         defaults.URL,
			Model:       defaults.Model,
			Temperature: defaults.Temperature,
			TopP:        defaults.TopP,
			NumCtx:      defaults.NumCtx,
			Timeout:     int(defaults.Timeout / time.Second),
		},
	}
}

// Load reads the file at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the project file path for target. For a regular file the
// containing directory is used.
func Discover(target string) string {
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}
	return filepath.Join(dir, FileName)
}

// Parse validates content against the embedded schema and merges it over Default().
func Parse(content []byte) (*Config, error) {
	if err := validate(content); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}

// KeywordSet resolves the keyword configuration. An explicit keyword list wins
// over the preset; extra keywords are appended to either.
func (c *Config) KeywordSet() (*keywords.Set, error) {
	words := c.Keywords
	if len(words) == 0 {
		preset, err := keywords.Preset(c.Preset)
		if err != nil {
			return nil, err
		}
		words = preset
	}
	if len(c.ExtraKeywords) > 0 {
		words = append(append([]string{}, words...), c.ExtraKeywords...)
	}
	return keywords.New(words), nil
}

// ProviderConfig converts the llm block into a provider configuration.
func (c *Config) ProviderConfig() *llm.Config {
	return &llm.Config{
		Provider:    c.LLM.Provider,
		URL:         c.LLM.URL,
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		TopP:        c.LLM.TopP,
		NumCtx:      c.LLM.NumCtx,
		Timeout:     time.Duration(c.LLM.Timeout) * time.Second,
	}
}

// Write stores c at path with a header comment. An existing file is kept
// unless overwrite is set.
func Write(path string, c *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists", path)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	var content bytes.Buffer
	content.WriteString(`# .anonymizer.yaml configuration file
#
# preset:         keyword preset (` + strings.Join(keywords.PresetNames(), ", ") + `)
# keywords:       explicit keyword list, replaces the preset
# extra_keywords: words appended to the preset or keyword list
# extensions:     file extensions picked up when anonymizing a directory
# ignore:         glob patterns (relative paths) to skip
# mapping_format: json, yaml or cbor to write a mapping manifest per file
# blind:          rename outputs to classN files and write an @readme.txt index

`)
	content.Write(data)

	return os.WriteFile(path, content.Bytes(), 0644)
}

func validate(content []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	if doc == nil {
		return nil
	}

	normalized, err := toJSONValue(doc)
	if err != nil {
		return err
	}

	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("configuration schema: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid configuration: %s", describe(verr))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	url := "schema://anonymizer.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// toJSONValue turns yaml.v2 output (map[interface{}]interface{}) into the
// shapes the validator expects by going through encoding/json.
func toJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, fmt.Errorf("failed to convert configuration: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to convert configuration: %w", err)
	}
	return out, nil
}

func stringKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = stringKeys(item)
		}
		return m
	case []interface{}:
		for i, item := range val {
			val[i] = stringKeys(item)
		}
		return val
	default:
		return v
	}
}

// describe reports the deepest cause, which names the offending key.
func describe(err *jsonschema.ValidationError) string {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	location := err.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, err.Message)
}
