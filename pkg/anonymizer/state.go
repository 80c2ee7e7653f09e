package anonymizer

import "unicode"

// State is the lexical context of the scan cursor.
type State int

const (
	StateNormal State = iota
	StateInString
	StateInChar
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateInString:
		return "in-string"
	case StateInChar:
		return "in-char"
	default:
		return "unknown"
	}
}

// Cursor is the scanner position state. InIdent only ever holds in StateNormal.
type Cursor struct {
	State   State
	InIdent bool
}

// Action tells the scanner what to do with the current character.
type Action int

const (
	ActionEcho        Action = iota // copy the character to the output
	ActionBuffer                    // character belongs to an open literal
	ActionOpenLiteral               // character opens a string or char literal
	ActionCloseString               // character closes a string literal
	ActionCloseChar                 // character closes a char literal
	ActionOpenIdent                 // character starts an identifier
	ActionExtendIdent               // character continues the open identifier
)

// Transition is the result of Step for one character.
type Transition struct {
	Next Cursor
	// CloseIdent reports that the open identifier ends just before this character
	// and must be flushed before Action is applied.
	CloseIdent bool
	Action     Action
}

// Step computes the transition for text[i] given the cursor before it. Only text[:i]
// and a few characters after i are inspected. keepNonSealed enables the "non-sealed"
// hyphen exception.
func Step(c Cursor, text []rune, i int, keepNonSealed bool) Transition {
	ch := text[i]

	switch c.State {
	case StateInString:
		if isStringQuote(text, i) {
			return Transition{Next: Cursor{State: StateNormal}, Action: ActionCloseString}
		}
		return Transition{Next: c, Action: ActionBuffer}
	case StateInChar:
		if isCharQuote(text, i) {
			return Transition{Next: Cursor{State: StateNormal}, Action: ActionCloseChar}
		}
		return Transition{Next: c, Action: ActionBuffer}
	}

	if c.InIdent {
		if isIdentPart(ch) || (ch == '-' && keepNonSealed && isNonSealedHyphen(text, i)) {
			return Transition{Next: c, Action: ActionExtendIdent}
		}
	}

	t := Transition{CloseIdent: c.InIdent, Next: Cursor{State: StateNormal}}
	switch {
	case isStringQuote(text, i):
		t.Next.State = StateInString
		t.Action = ActionOpenLiteral
	case isCharQuote(text, i):
		t.Next.State = StateInChar
		t.Action = ActionOpenLiteral
	case isIdentStart(ch):
		t.Next.InIdent = true
		t.Action = ActionOpenIdent
	default:
		t.Action = ActionEcho
	}
	return t
}

// precedingBackslashes counts the run of backslashes immediately before text[i].
func precedingBackslashes(text []rune, i int) int {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n
}

// isStringQuote reports whether text[i] is a double quote that opens or closes a
// string. An odd run of backslashes escapes it. A quote sitting between two single
// quotes is the character literal '"'.
func isStringQuote(text []rune, i int) bool {
	if text[i] != '"' {
		return false
	}
	if n := precedingBackslashes(text, i); n > 0 {
		return n%2 == 0
	}
	if i > 0 && text[i-1] == '\'' {
		return !(i+1 < len(text) && text[i+1] == text[i-1])
	}
	return true
}

// isCharQuote reports whether text[i] is an unescaped single quote.
func isCharQuote(text []rune, i int) bool {
	return text[i] == '\'' && precedingBackslashes(text, i)%2 == 0
}

// isNonSealedHyphen reports whether text[i] is the hyphen of a standalone
// "non-sealed" token.
func isNonSealedHyphen(text []rune, i int) bool {
	if text[i] != '-' || i < 3 || i+6 >= len(text) {
		return false
	}
	if string(text[i-3:i]) != "non" || string(text[i+1:i+7]) != "sealed" {
		return false
	}
	if i-4 >= 0 && isIdentPart(text[i-4]) {
		return false
	}
	if i+7 < len(text) && isIdentPart(text[i+7]) {
		return false
	}
	return true
}

// isIdentStart follows Java's identifier-start rules: letters, letter numbers,
// currency symbols and connector punctuation.
func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$' ||
		unicode.In(r, unicode.Nl, unicode.Sc, unicode.Pc)
}

// isIdentPart adds digits and combining marks to the start set.
func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.In(r, unicode.Nd, unicode.Mn, unicode.Mc)
}
