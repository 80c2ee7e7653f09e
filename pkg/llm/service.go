package llm

import (
	"context"
	"fmt"
	"sort"
)

// ClassificationService provides high-level pattern classification
type ClassificationService struct {
	provider Provider
}

// NewClassificationService creates a new classification service
func NewClassificationService(provider Provider) *ClassificationService {
	return &ClassificationService{provider: provider}
}

// Classify classifies one class and returns its patterns, most certain first
func (s *ClassificationService) Classify(ctx context.Context, req ClassificationRequest) (*ClassificationResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	response, err := s.provider.Classify(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to classify %s: %w", req.ClassName, err)
	}

	patterns := append([]QuantifiedPattern(nil), response.Patterns...)
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Certainty > patterns[j].Certainty
	})

	return &ClassificationResult{
		ClassName: req.ClassName,
		Patterns:  patterns,
		Raw:       response.Raw,
		Metadata:  response.Metadata,
	}, nil
}

// TestConnection tests the connection to the LLM provider
func (s *ClassificationService) TestConnection(ctx context.Context) error {
	return s.provider.TestConnection(ctx)
}

// GetModelInfo returns information about the current model
func (s *ClassificationService) GetModelInfo() ModelInfo {
	return s.provider.GetModelInfo()
}

func (s *ClassificationService) validateRequest(req ClassificationRequest) error {
	if req.ClassName == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if req.Source == "" {
		return fmt.Errorf("source cannot be empty")
	}
	return nil
}

// ClassificationResult represents the outcome for a single class
type ClassificationResult struct {
	ClassName string              // Class name, or its blind label
	Patterns  []QuantifiedPattern // Sorted by descending certainty
	Raw       string              // Unparsed model output
	Metadata  map[string]string   // Additional metadata
}

// Best returns the most certain pattern, if any
func (r *ClassificationResult) Best() (QuantifiedPattern, bool) {
	if len(r.Patterns) == 0 {
		return QuantifiedPattern{}, false
	}
	return r.Patterns[0], true
}
