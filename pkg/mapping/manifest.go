// Package mapping records how placeholders map back to the original source and
// restores anonymized text from such a record.
package mapping

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/anonymizer"
)

// FormatVersion is the manifest layout version written by this package.
const FormatVersion = "v1.0.0"

// Entry is one table row: the placeholder number and the text it replaced.
type Entry struct {
	Index int    `json:"index" yaml:"index" cbor:"index"`
	Text  string `json:"text" yaml:"text" cbor:"text"`
}

// Manifest describes a single anonymization call.
type Manifest struct {
	Version      string  `json:"version" yaml:"version" cbor:"version"`
	Source       string  `json:"source,omitempty" yaml:"source,omitempty" cbor:"source,omitempty"`
	SourceDigest string  `json:"source_digest" yaml:"source_digest" cbor:"source_digest"`
	OutputDigest string  `json:"output_digest" yaml:"output_digest" cbor:"output_digest"`
	Literals     []Entry `json:"literals" yaml:"literals" cbor:"literals"`
	Identifiers  []Entry `json:"identifiers" yaml:"identifiers" cbor:"identifiers"`
}

// New builds the manifest for res, produced from the raw lines of source.
func New(source string, raw []string, res *anonymizer.Result) *Manifest {
	return &Manifest{
		Version:      FormatVersion,
		Source:       source,
		SourceDigest: Digest(raw),
		OutputDigest: Digest(res.Lines),
		Literals:     entries(res.Literals),
		Identifiers:  entries(res.Identifiers),
	}
}

// Digest returns the hex BLAKE2b-256 sum of lines joined with line breaks.
func Digest(lines []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// Literal returns the original text for literal number n, quotes included.
func (m *Manifest) Literal(n int) (string, bool) {
	return lookup(m.Literals, n)
}

// Identifier returns the original spelling for identifier number n.
func (m *Manifest) Identifier(n int) (string, bool) {
	return lookup(m.Identifiers, n)
}

// Verify reports whether lines are the output this manifest was recorded for.
func (m *Manifest) Verify(lines []string) bool {
	return m.OutputDigest == Digest(lines)
}

func entries(t *anonymizer.Table) []Entry {
	keys := t.Keys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Index: i, Text: k}
	}
	return out
}

// lookup tolerates hand-edited manifests whose rows are out of order.
func lookup(list []Entry, n int) (string, bool) {
	if n >= 0 && n < len(list) && list[n].Index == n {
		return list[n].Text, true
	}
	for _, e := range list {
		if e.Index == n {
			return e.Text, true
		}
	}
	return "", false
}
