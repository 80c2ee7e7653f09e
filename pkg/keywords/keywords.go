// Package keywords holds the reserved-word sets that the anonymizer leaves untouched.
package keywords

import "strings"

// NonSealed is the one Java keyword that contains a character which cannot appear in
// an identifier.
const NonSealed = "non-sealed"

// Set is an ordered, immutable collection of reserved words.
type Set struct {
	words     []string
	index     map[string]struct{}
	nonSealed bool
}

// New builds a set from words, keeping their order. A nil or empty list falls back to
// the default Java set.
func New(words []string) *Set {
	if len(words) == 0 {
		words = Java()
	}

	s := &Set{
		words: make([]string, 0, len(words)),
		index: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		if _, seen := s.index[w]; seen {
			continue
		}
		s.index[w] = struct{}{}
		s.words = append(s.words, w)
	}
	s.nonSealed = s.ContainsFold(NonSealed)

	return s
}

// Default returns the default Java set.
func Default() *Set {
	return New(nil)
}

// Contains reports whether word is in the set, matching case exactly.
func (s *Set) Contains(word string) bool {
	_, ok := s.index[word]
	return ok
}

// ContainsFold reports whether word is in the set, ignoring case.
func (s *Set) ContainsFold(word string) bool {
	for _, w := range s.words {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}

// PreservesNonSealed reports whether the scanner must keep "non-sealed" whole instead
// of splitting it at the hyphen.
func (s *Set) PreservesNonSealed() bool {
	return s.nonSealed
}

// Words returns a copy of the words in construction order.
func (s *Set) Words() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Len returns the number of distinct words.
func (s *Set) Len() int {
	return len(s.words)
}
