package mapping

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrUnknownPlaceholder means the placeholder number has no manifest entry.
	ErrUnknownPlaceholder = errors.New("placeholder not found in manifest")
	// ErrMalformedPlaceholder means the placeholder suffix is not a decimal number.
	ErrMalformedPlaceholder = errors.New("placeholder number is not an integer")
)

// PlaceholderError reports a placeholder that could not be restored.
type PlaceholderError struct {
	Placeholder string
	Line        int
	Err         error
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Placeholder, e.Err)
}

func (e *PlaceholderError) Unwrap() error {
	return e.Err
}

// Identifier placeholders are not anchored to a word boundary: "10L" scans as
// the number 10 followed by the identifier L and comes out as "10ident$N".
var placeholderPattern = regexp.MustCompile(
	`'char-literal\$(\w*)'|"literal\$(\w*)"|ident\$(\w*)`,
)

// Deanonymize replaces every placeholder in lines with the text recorded in m.
// String and char placeholders share the literal table, and the recorded text
// carries its own delimiters.
func Deanonymize(lines []string, m *Manifest) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		restored, err := restoreLine(line, i+1, m)
		if err != nil {
			return nil, err
		}
		out[i] = restored
	}
	return out, nil
}

func restoreLine(line string, lineNo int, m *Manifest) (string, error) {
	var firstErr error
	restored := placeholderPattern.ReplaceAllStringFunc(line, func(match string) string {
		if firstErr != nil {
			return match
		}
		sub := placeholderPattern.FindStringSubmatch(match)

		var digits string
		var lookup func(int) (string, bool)
		switch match[0] {
		case '\'':
			digits, lookup = sub[1], m.Literal
		case '"':
			digits, lookup = sub[2], m.Literal
		default:
			digits, lookup = sub[3], m.Identifier
		}

		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			firstErr = &PlaceholderError{Placeholder: match, Line: lineNo, Err: ErrMalformedPlaceholder}
			return match
		}
		text, ok := lookup(n)
		if !ok {
			firstErr = &PlaceholderError{Placeholder: match, Line: lineNo, Err: ErrUnknownPlaceholder}
			return match
		}
		return text
	})
	if firstErr != nil {
		return "", firstErr
	}
	return restored, nil
}
