package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaProvider implements the Provider interface for Ollama
type OllamaProvider struct {
	config *Config
	client *http.Client
}

// NewOllamaProvider creates a new Ollama provider instance
func NewOllamaProvider(config *Config) *OllamaProvider {
	return &OllamaProvider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// OllamaRequest represents the request structure for Ollama API
type OllamaRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// OllamaResponse represents the response structure from Ollama API
type OllamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const ollamaPromptTemplate = `You are a software design expert. Identify which design patterns the Java class below implements.

CRITICAL INSTRUCTIONS:
- Identifiers and literals have been anonymized (ident$N, "literal$N", 'char-literal$N'); judge the structure, not the names
- Consider only these patterns: %s
- Answer with a markdown table and nothing else
- Use exactly these columns: | Pattern | Certainty | Correctness |
- Certainty is how sure you are that the pattern is present, as a percentage
- Correctness is how faithfully the class implements the pattern, as a percentage
- If no pattern applies, answer with a single row for None

CLASS: %s
` + "```java\n%s\n```"

// Classify asks Ollama for the patterns implemented by the requested class
func (p *OllamaProvider) Classify(ctx context.Context, request ClassificationRequest) (*ClassificationResponse, error) {
	candidates := request.Patterns
	if len(candidates) == 0 {
		candidates = DefaultPatterns
	}

	// Create the prompt
	prompt := fmt.Sprintf(
		ollamaPromptTemplate,
		strings.Join(candidates, ", "),
		request.ClassName,
		request.Source,
	)

	// Prepare request options
	options := make(map[string]interface{})
	options["temperature"] = p.config.Temperature
	options["top_p"] = p.config.TopP
	options["num_ctx"] = p.config.NumCtx

	for k, v := range p.config.Options {
		options[k] = v
	}
	// Add any additional options from request
	for k, v := range request.Options {
		options[k] = v
	}

	ollamaReq := OllamaRequest{
		Model:   p.config.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	}

	jsonData, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, &ProviderError{
			Provider: "ollama",
			Message:  "failed to marshal request",
			Err:      err,
		}
	}

	// Make HTTP request
	req, err := http.NewRequestWithContext(ctx, "POST", p.config.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &ProviderError{
			Provider: "ollama",
			Message:  "failed to create HTTP request",
			Err:      err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Provider: "ollama",
			Message:  "HTTP request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			Provider: "ollama",
			Message:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var ollamaResp OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, &ProviderError{
			Provider: "ollama",
			Message:  "failed to decode response",
			Err:      err,
		}
	}

	raw := p.cleanResponse(ollamaResp.Response)
	patterns, err := ParsePatternTable(raw)
	if err != nil {
		return nil, &ProviderError{
			Provider: "ollama",
			Message:  "unusable classification",
			Err:      err,
		}
	}

	return &ClassificationResponse{
		Patterns: patterns,
		Raw:      raw,
		Metadata: map[string]string{
			"model":    p.config.Model,
			"provider": "ollama",
		},
	}, nil
}

// TestConnection verifies Ollama is accessible
func (p *OllamaProvider) TestConnection(ctx context.Context) error {
	// Test with /api/tags endpoint
	tagsURL := strings.Replace(p.config.URL, "/api/generate", "/api/tags", 1)

	req, err := http.NewRequestWithContext(ctx, "GET", tagsURL, nil)
	if err != nil {
		return &ProviderError{
			Provider: "ollama",
			Message:  "failed to create test request",
			Err:      err,
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{
			Provider: "ollama",
			Message:  "connection test failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{
			Provider: "ollama",
			Message:  fmt.Sprintf("connection test returned HTTP %d", resp.StatusCode),
		}
	}

	return nil
}

// GetModelInfo returns information about the current model
func (p *OllamaProvider) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:        p.config.Model,
		Provider:    "ollama",
		Version:     "unknown", // Ollama doesn't provide version info easily
		ContextSize: p.config.NumCtx,
	}
}

// cleanResponse strips code fences some models wrap around the table
func (p *OllamaProvider) cleanResponse(response string) string {
	text := strings.TrimSpace(response)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	text = strings.TrimPrefix(text, "```markdown")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}
