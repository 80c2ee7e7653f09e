// Package preprocess prepares raw source lines for the anonymizer: comments are
// removed and whitespace is normalized so the scanner only sees code.
package preprocess

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnterminatedComment is returned when a block comment runs to the end of input.
var ErrUnterminatedComment = errors.New("unterminated block comment")

// stripper walks the input rune by rune, copying everything except comments.
type stripper struct {
	input string
	pos   int // current position in input
	width int // width of last rune read
	line  int // current line number
	out   strings.Builder
}

// StripComments removes // and /* */ comments from text. Comment markers inside string,
// text-block and character literals are kept. Newlines inside block comments are kept
// so that line structure survives.
func StripComments(text string) (string, error) {
	s := &stripper{input: text, line: 1}
	s.out.Grow(len(text))

	for {
		r := s.next()
		if r == 0 && s.width == 0 {
			break
		}

		switch {
		case r == '/' && s.peek() == '/':
			s.skipLineComment()
		case r == '/' && s.peek() == '*':
			s.next()
			if err := s.skipBlockComment(); err != nil {
				return "", err
			}
		case r == '"' && strings.HasPrefix(s.input[s.pos:], `""`):
			s.out.WriteRune(r)
			s.copyTextBlock()
		case r == '"' || r == '\'':
			s.out.WriteRune(r)
			s.copyQuoted(r)
		default:
			s.out.WriteRune(r)
		}
	}

	return s.out.String(), nil
}

// next reads the next rune and advances position
func (s *stripper) next() rune {
	if s.pos >= len(s.input) {
		s.width = 0
		return 0
	}

	r, w := utf8.DecodeRuneInString(s.input[s.pos:])
	s.width = w
	s.pos += w
	if r == '\n' {
		s.line++
	}
	return r
}

// backup steps back one rune
func (s *stripper) backup() {
	s.pos -= s.width
	if s.pos < len(s.input) && s.input[s.pos] == '\n' {
		s.line--
	}
}

// peek returns the next rune without advancing position
func (s *stripper) peek() rune {
	r := s.next()
	if s.width > 0 {
		s.backup()
	}
	return r
}

// skipLineComment drops everything up to, not including, the line break.
func (s *stripper) skipLineComment() {
	for {
		r := s.next()
		if s.width == 0 {
			return
		}
		if r == '\n' {
			s.backup()
			return
		}
	}
}

// skipBlockComment drops everything up to and including the closing */.
func (s *stripper) skipBlockComment() error {
	start := s.line
	for {
		r := s.next()
		if s.width == 0 {
			return fmt.Errorf("%w opened at line %d", ErrUnterminatedComment, start)
		}
		if r == '\n' {
			s.out.WriteRune(r)
			continue
		}
		if r == '*' && s.peek() == '/' {
			s.next()
			return nil
		}
	}
}

// copyQuoted copies a string or char literal body through its closing quote. A line
// break ends the literal early: Java literals cannot span lines, and the scanner
// reports the damage later.
func (s *stripper) copyQuoted(quote rune) {
	for {
		r := s.next()
		if s.width == 0 {
			return
		}
		if r == '\n' {
			s.backup()
			return
		}
		s.out.WriteRune(r)
		if r == '\\' {
			if esc := s.next(); s.width > 0 {
				s.out.WriteRune(esc)
			}
			continue
		}
		if r == quote {
			return
		}
	}
}

// copyTextBlock copies a """ text block, the first quote already written.
func (s *stripper) copyTextBlock() {
	s.out.WriteString(`""`)
	s.pos += 2
	for s.pos < len(s.input) {
		if strings.HasPrefix(s.input[s.pos:], `"""`) {
			s.out.WriteString(`"""`)
			s.pos += 3
			return
		}
		r := s.next()
		s.out.WriteRune(r)
		if r == '\\' {
			if esc := s.next(); s.width > 0 {
				s.out.WriteRune(esc)
			}
		}
	}
}
