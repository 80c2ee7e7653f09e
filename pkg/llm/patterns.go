package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoPatterns is returned when a response holds no parsable table row.
var ErrNoPatterns = errors.New("no pattern rows found in response")

// DefaultPatterns are the candidate design patterns offered to the model when
// a request does not name its own.
var DefaultPatterns = []string{
	"Abstract Factory", "Builder", "Factory Method", "Prototype", "Singleton",
	"Adapter", "Bridge", "Composite", "Decorator", "Facade", "Flyweight", "Proxy",
	"Chain of Responsibility", "Command", "Interpreter", "Iterator", "Mediator",
	"Memento", "Observer", "State", "Strategy", "Template Method", "Visitor",
	"None",
}

// QuantifiedPattern is one classification row. Certainty and Correctness are
// fractions in [0, 1] when the model reports percentages.
type QuantifiedPattern struct {
	Pattern     string
	Certainty   float64
	Correctness float64
}

func (q QuantifiedPattern) String() string {
	return fmt.Sprintf("%s (certainty %.0f%%, correctness %.0f%%)", q.Pattern, q.Certainty*100, q.Correctness*100)
}

var intPattern = regexp.MustCompile(`^-?\d+$`)

// ParsePatternRow parses a markdown table row such as
// "| Singleton | 90% | 85% |". A leading numeric index column is dropped,
// and so is a free-text column between the pattern and two percentages.
func ParsePatternRow(line string) (QuantifiedPattern, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return QuantifiedPattern{}, fmt.Errorf("not a table row: %q", line)
	}
	line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")

	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	switch {
	case len(fields) > 0 && intPattern.MatchString(fields[0]):
		fields = fields[1:]
	case len(fields) > 3 && isPercent(fields[2]) && isPercent(fields[3]):
		fields = append(fields[:1], fields[2:]...)
	}

	if len(fields) < 3 {
		return QuantifiedPattern{}, fmt.Errorf("expected 3 columns, got %d: %q", len(fields), line)
	}
	if fields[0] == "" {
		return QuantifiedPattern{}, fmt.Errorf("empty pattern name: %q", line)
	}

	certainty, err := parsePercent(fields[1])
	if err != nil {
		return QuantifiedPattern{}, fmt.Errorf("invalid certainty %q: %w", fields[1], err)
	}
	correctness, err := parsePercent(fields[2])
	if err != nil {
		return QuantifiedPattern{}, fmt.Errorf("invalid correctness %q: %w", fields[2], err)
	}

	return QuantifiedPattern{
		Pattern:     fields[0],
		Certainty:   certainty,
		Correctness: correctness,
	}, nil
}

// ParsePatternTable collects every parsable table row in text. Header and
// separator rows are skipped.
func ParsePatternTable(text string) ([]QuantifiedPattern, error) {
	var patterns []QuantifiedPattern
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") || strings.Contains(line, "---") {
			continue
		}
		qp, err := ParsePatternRow(line)
		if err != nil {
			continue
		}
		patterns = append(patterns, qp)
	}

	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	return patterns, nil
}

func isPercent(field string) bool {
	return intPattern.MatchString(strings.TrimSpace(strings.ReplaceAll(field, "%", "")))
}

func parsePercent(field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(field, "%", "")), 64)
	if err != nil {
		return 0, err
	}
	return value / 100, nil
}
