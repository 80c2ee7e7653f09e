// Package anonymizer rewrites C-family source so that string literals, character
// literals and non-keyword identifiers become numbered placeholders:
//
//	int x = "hello";   ->   int ident$0 = "literal$0";
//
// Numbers follow first-occurrence order and are stable within one call. Every call
// starts from empty tables, so separate calls (or files) do not share numbering.
// An Anonymizer is immutable after construction and may be shared between goroutines.
package anonymizer

import (
	"io"
	"log/slog"
	"strings"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/keywords"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/preprocess"
)

// Anonymizer replaces literals and identifiers with placeholders.
type Anonymizer struct {
	keywords *keywords.Set
	logger   *slog.Logger
}

// Option configures an Anonymizer.
type Option func(*Anonymizer)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Anonymizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithKeywordSet uses an already built keyword set instead of a word list.
func WithKeywordSet(set *keywords.Set) Option {
	return func(a *Anonymizer) {
		if set != nil {
			a.keywords = set
		}
	}
}

// New creates an Anonymizer that keeps words verbatim. A nil or empty list selects the
// default Java keywords.
func New(words []string, opts ...Option) *Anonymizer {
	a := &Anonymizer{
		keywords: keywords.New(words),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Keywords returns the keyword set in use.
func (a *Anonymizer) Keywords() *keywords.Set {
	return a.keywords
}

// PreservesNonSealed reports whether "non-sealed" is kept whole.
func (a *Anonymizer) PreservesNonSealed() bool {
	return a.keywords.PreservesNonSealed()
}

// Result is the outcome of one anonymization call. The tables map placeholder numbers
// back to the original text.
type Result struct {
	Lines       []string
	Literals    *Table
	Identifiers *Table
}

// Anonymize strips comments, normalizes whitespace and anonymizes raw source lines.
func (a *Anonymizer) Anonymize(lines []string) ([]string, error) {
	res, err := a.Run(lines)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// Run is Anonymize that also returns the literal and identifier tables.
func (a *Anonymizer) Run(lines []string) (*Result, error) {
	prepared, err := preprocess.Prepare(lines)
	if err != nil {
		return nil, err
	}
	return a.Scan(prepared)
}

// Scan anonymizes lines that are already free of comments, whitespace-normalized and
// without blank lines.
func (a *Anonymizer) Scan(lines []string) (*Result, error) {
	s := newScanner(strings.Join(lines, "\n"), a.keywords)
	if err := s.run(); err != nil {
		return nil, err
	}

	res := &Result{
		Lines:       splitNonEmpty(s.out.String()),
		Literals:    s.literals,
		Identifiers: s.idents,
	}
	a.logger.Debug("anonymized",
		"lines", len(res.Lines),
		"literals", res.Literals.Len(),
		"identifiers", res.Identifiers.Len())

	return res, nil
}

func splitNonEmpty(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
