package anonymizer

import (
	"strconv"
	"strings"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/internal/invariant"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/keywords"
)

// Placeholder prefixes. The number of the table entry follows the '$'.
const (
	IdentPrefix       = "ident$"
	LiteralPrefix     = "literal$"
	CharLiteralPrefix = "char-literal$"
)

// scanner holds the state of one anonymization pass. Nothing in it outlives the call
// that created it.
type scanner struct {
	text     []rune
	keywords *keywords.Set
	literals *Table
	idents   *Table
	out      strings.Builder

	cursor       Cursor
	literalStart int
	identStart   int
}

func newScanner(text string, set *keywords.Set) *scanner {
	s := &scanner{
		text:         []rune(text),
		keywords:     set,
		literals:     NewTable(),
		idents:       NewTable(),
		literalStart: -1,
		identStart:   -1,
	}
	s.out.Grow(len(text))
	return s
}

// run scans the whole text. The only error is an unterminated literal.
func (s *scanner) run() error {
	keepNonSealed := s.keywords.PreservesNonSealed()

	for i := range s.text {
		t := Step(s.cursor, s.text, i, keepNonSealed)
		if t.CloseIdent {
			s.closeIdent(i)
		}

		switch t.Action {
		case ActionEcho:
			s.out.WriteRune(s.text[i])
		case ActionOpenLiteral:
			s.literalStart = i
		case ActionCloseString:
			s.writePlaceholder(`"`, LiteralPrefix, s.closeLiteral(i), `"`)
		case ActionCloseChar:
			s.writePlaceholder(`'`, CharLiteralPrefix, s.closeLiteral(i), `'`)
		case ActionOpenIdent:
			s.identStart = i
		case ActionBuffer, ActionExtendIdent:
		}

		s.cursor = t.Next
		invariant.Invariant(!s.cursor.InIdent || s.cursor.State == StateNormal,
			"identifier open inside %s at offset %d", s.cursor.State, i)
	}

	switch s.cursor.State {
	case StateInString:
		return newLiteralError(KindString, s.text, s.literalStart)
	case StateInChar:
		return newLiteralError(KindChar, s.text, s.literalStart)
	}
	if s.cursor.InIdent {
		s.closeIdent(len(s.text))
	}
	return nil
}

// closeLiteral registers text[literalStart:end+1], quotes included.
func (s *scanner) closeLiteral(end int) int {
	invariant.InRange(s.literalStart, 0, end-1, "literal start")

	n := s.literals.Assign(string(s.text[s.literalStart : end+1]))
	s.literalStart = -1
	return n
}

// closeIdent flushes the identifier text[identStart:end]. Keywords are copied through
// and never take a number. A hyphen can only be inside the identifier when it is the
// confirmed "non-sealed" keyword.
func (s *scanner) closeIdent(end int) {
	invariant.InRange(s.identStart, 0, end-1, "identifier start")

	word := string(s.text[s.identStart:end])
	s.identStart = -1

	if s.keywords.Contains(word) || strings.ContainsRune(word, '-') {
		s.out.WriteString(word)
		return
	}
	s.writePlaceholder("", IdentPrefix, s.idents.Assign(word), "")
}

func (s *scanner) writePlaceholder(openQuote, prefix string, n int, closeQuote string) {
	s.out.WriteString(openQuote)
	s.out.WriteString(prefix)
	s.out.WriteString(strconv.Itoa(n))
	s.out.WriteString(closeQuote)
}
