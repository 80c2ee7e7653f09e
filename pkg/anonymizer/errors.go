package anonymizer

import (
	"errors"
	"fmt"
)

// ErrUnterminatedLiteral is wrapped by every LiteralError.
var ErrUnterminatedLiteral = errors.New("unterminated literal")

// LiteralKind names the kind of quoted literal.
type LiteralKind string

const (
	KindString LiteralKind = "string"
	KindChar   LiteralKind = "char"
)

// LiteralError reports a literal still open at the end of input. Line and Column are
// 1-based and refer to the preprocessed text the scanner saw.
type LiteralError struct {
	Kind   LiteralKind
	Offset int
	Line   int
	Column int
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("unterminated %s literal starting at line %d, column %d", e.Kind, e.Line, e.Column)
}

func (e *LiteralError) Unwrap() error {
	return ErrUnterminatedLiteral
}

// newLiteralError locates offset within text.
func newLiteralError(kind LiteralKind, text []rune, offset int) *LiteralError {
	line, col := 1, 1
	for _, r := range text[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &LiteralError{Kind: kind, Offset: offset, Line: line, Column: col}
}
