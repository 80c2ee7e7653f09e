package llm

import (
	"context"
	"time"
)

// Provider represents a generic LLM provider interface
type Provider interface {
	// Classify asks the model which design patterns the given class implements
	Classify(ctx context.Context, request ClassificationRequest) (*ClassificationResponse, error)

	// TestConnection verifies the LLM provider is accessible
	TestConnection(ctx context.Context) error

	// GetModelInfo returns information about the current model
	GetModelInfo() ModelInfo
}

// ClassificationRequest represents a request for pattern classification
type ClassificationRequest struct {
	ClassName string                 // Class name, or its blind label
	Source    string                 // Anonymized source of the class
	Patterns  []string               // Candidate pattern names offered to the model
	Options   map[string]interface{} // Provider-specific options
}

// ClassificationResponse represents the response from classification
type ClassificationResponse struct {
	Patterns []QuantifiedPattern // Rows parsed from the model's table
	Raw      string              // Unparsed model output
	Metadata map[string]string   // Additional metadata from the LLM
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name        string
	Provider    string
	Version     string
	ContextSize int
}

// Config represents configuration for LLM providers
type Config struct {
	Provider    string                 `yaml:"provider"`    // Provider type (ollama, openai, etc.)
	URL         string                 `yaml:"url"`         // Provider URL
	Model       string                 `yaml:"model"`       // Model name
	Temperature float64                `yaml:"temperature"` // Generation temperature
	TopP        float64                `yaml:"top_p"`       // Top-p sampling
	NumCtx      int                    `yaml:"num_ctx"`     // Context window size
	Timeout     time.Duration          `yaml:"timeout"`     // Request timeout
	Options     map[string]interface{} `yaml:"options"`     // Provider-specific options
}

// Error types for better error handling
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
