package anonymizer

import "github.com/BenjyNStrauss/SDP-detection-LLMs/internal/invariant"

// Table assigns sequential numbers to distinct texts in first-seen order.
// A Table belongs to a single scan and is not safe for concurrent writes.
type Table struct {
	keys  []string
	index map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Assign returns the number for key, registering it with the next free number if it
// has not been seen before.
func (t *Table) Assign(key string) int {
	invariant.Precondition(key != "", "table key must not be empty")

	if n, ok := t.index[key]; ok {
		return n
	}
	n := len(t.keys)
	t.keys = append(t.keys, key)
	t.index[key] = n

	invariant.Invariant(len(t.keys) == len(t.index), "table has %d keys but %d index entries", len(t.keys), len(t.index))
	return n
}

// Lookup returns the number assigned to key.
func (t *Table) Lookup(key string) (int, bool) {
	n, ok := t.index[key]
	return n, ok
}

// Key returns the text that was assigned number n.
func (t *Table) Key(n int) (string, bool) {
	if n < 0 || n >= len(t.keys) {
		return "", false
	}
	return t.keys[n], true
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.keys)
}

// Keys returns the keys ordered by their number.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}
