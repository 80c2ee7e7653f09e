package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func ollamaBody(t *testing.T, response string) string {
	t.Helper()
	data, err := json.Marshal(OllamaResponse{Response: response, Done: true})
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	return string(data)
}

func TestOllamaProvider_Classify(t *testing.T) {
	tests := []struct {
		name          string
		responseText  string
		httpStatus    int
		expectError   bool
		expectedFirst QuantifiedPattern
		expectedCount int
	}{
		{
			name:          "plain table",
			responseText:  "| Pattern | Certainty | Correctness |\n|---|---|---|\n| Singleton | 90% | 80% |\n| Factory Method | 40% | 50% |",
			httpStatus:    http.StatusOK,
			expectedFirst: QuantifiedPattern{Pattern: "Singleton", Certainty: 0.9, Correctness: 0.8},
			expectedCount: 2,
		},
		{
			name:          "table in code fence",
			responseText:  "```markdown\n| Pattern | Certainty | Correctness |\n| Observer | 75% | 70% |\n```",
			httpStatus:    http.StatusOK,
			expectedFirst: QuantifiedPattern{Pattern: "Observer", Certainty: 0.75, Correctness: 0.7},
			expectedCount: 1,
		},
		{
			name:         "no table",
			responseText: "This class looks like a Singleton.",
			httpStatus:   http.StatusOK,
			expectError:  true,
		},
		{
			name:        "HTTP error response",
			httpStatus:  http.StatusNotFound,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := make(chan OllamaRequest, 1)

			// Create mock server
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req OllamaRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				requests <- req
				w.WriteHeader(tt.httpStatus)
				if tt.httpStatus == http.StatusOK {
					w.Write([]byte(ollamaBody(t, tt.responseText)))
				} else {
					w.Write([]byte(`{"error": "model not found"}`))
				}
			}))
			defer server.Close()

			config := &Config{
				Provider:    "ollama",
				URL:         server.URL,
				Model:       "test-model",
				Temperature: 0.1,
				TopP:        0.9,
				NumCtx:      2048,
				Timeout:     5 * time.Second,
			}

			provider := NewOllamaProvider(config)
			response, err := provider.Classify(context.Background(), ClassificationRequest{
				ClassName: "class#0",
				Source:    "public class ident$0 { private static ident$0 ident$1; }",
				Patterns:  []string{"Singleton", "Factory Method", "Observer"},
			})
			received := <-requests

			if received.Model != "test-model" {
				t.Errorf("expected model 'test-model' in request, got %q", received.Model)
			}
			if !strings.Contains(received.Prompt, "Singleton, Factory Method, Observer") {
				t.Errorf("prompt should list the candidate patterns")
			}
			if !strings.Contains(received.Prompt, "private static ident$0 ident$1;") {
				t.Errorf("prompt should contain the anonymized source")
			}
			if received.Options["num_ctx"] != float64(2048) {
				t.Errorf("expected num_ctx option 2048, got %v", received.Options["num_ctx"])
			}

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				var perr *ProviderError
				if err != nil && !errors.As(err, &perr) {
					t.Errorf("expected a ProviderError, got %T", err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(response.Patterns) != tt.expectedCount {
				t.Fatalf("expected %d patterns, got %d", tt.expectedCount, len(response.Patterns))
			}
			if response.Patterns[0] != tt.expectedFirst {
				t.Errorf("expected first pattern %+v, got %+v", tt.expectedFirst, response.Patterns[0])
			}
			if response.Metadata["provider"] != "ollama" {
				t.Errorf("expected provider metadata to be 'ollama', got %q", response.Metadata["provider"])
			}
		})
	}
}

func TestOllamaProvider_ClassifyDefaultPatterns(t *testing.T) {
	requests := make(chan OllamaRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req OllamaRequest
		json.NewDecoder(r.Body).Decode(&req)
		requests <- req
		w.Write([]byte(ollamaBody(t, "| None | 100% | 100% |")))
	}))
	defer server.Close()

	provider := NewOllamaProvider(&Config{URL: server.URL, Model: "m", Timeout: 5 * time.Second})
	if _, err := provider.Classify(context.Background(), ClassificationRequest{ClassName: "A", Source: "class ident$0 {}"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	received := <-requests
	if !strings.Contains(received.Prompt, "Chain of Responsibility") {
		t.Errorf("prompt should fall back to the default pattern list")
	}
}

func TestOllamaProvider_TestConnection(t *testing.T) {
	tests := []struct {
		name        string
		httpStatus  int
		expectError bool
	}{
		{
			name:        "successful connection",
			httpStatus:  http.StatusOK,
			expectError: false,
		},
		{
			name:        "connection failed",
			httpStatus:  http.StatusInternalServerError,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/tags" {
					w.WriteHeader(tt.httpStatus)
					w.Write([]byte(`{"models": []}`))
				}
			}))
			defer server.Close()

			config := &Config{
				Provider: "ollama",
				URL:      server.URL + "/api/generate", // Will be replaced with /api/tags
				Timeout:  5 * time.Second,
			}

			provider := NewOllamaProvider(config)
			err := provider.TestConnection(context.Background())

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestOllamaProvider_GetModelInfo(t *testing.T) {
	config := &Config{
		Provider: "ollama",
		Model:    "test-model:7b",
		NumCtx:   4096,
	}

	provider := NewOllamaProvider(config)
	info := provider.GetModelInfo()

	if info.Name != "test-model:7b" {
		t.Errorf("expected model name 'test-model:7b', got %q", info.Name)
	}

	if info.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", info.Provider)
	}

	if info.ContextSize != 4096 {
		t.Errorf("expected context size 4096, got %d", info.ContextSize)
	}
}

func TestOllamaProvider_CleanResponse(t *testing.T) {
	provider := &OllamaProvider{}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean text",
			input:    "| Singleton | 90% | 90% |",
			expected: "| Singleton | 90% | 90% |",
		},
		{
			name:     "markdown fence",
			input:    "```markdown\n| Singleton | 90% | 90% |\n```",
			expected: "| Singleton | 90% | 90% |",
		},
		{
			name:     "bare fence",
			input:    "```\n| Builder | 60% | 55% |\n```",
			expected: "| Builder | 60% | 55% |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := provider.cleanResponse(tt.input)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name: "valid ollama config",
			config: &Config{
				Provider: "ollama",
				Model:    "test-model",
			},
			expectError: false,
		},
		{
			name: "empty provider defaults to ollama",
			config: &Config{
				Model: "test-model",
			},
			expectError: false,
		},
		{
			name:        "nil config",
			config:      nil,
			expectError: true,
		},
		{
			name: "unsupported provider",
			config: &Config{
				Provider: "unsupported",
				Model:    "test-model",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if _, ok := provider.(*OllamaProvider); !ok {
				t.Errorf("expected *OllamaProvider, got %T", provider)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", config.Provider)
	}

	if config.Model != "deepseek-coder:6.7b" {
		t.Errorf("expected model 'deepseek-coder:6.7b', got %q", config.Model)
	}

	if config.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %f", config.Temperature)
	}

	if config.Timeout != 120*time.Second {
		t.Errorf("expected timeout 120s, got %v", config.Timeout)
	}
}
