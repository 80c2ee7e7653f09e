package mapping

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/anonymizer"
)

var sample = []string{
	"public class Greeter {",
	"  // greets",
	`  String s = "hi"; char c = 'x';`,
	"  void run() { s = s + c; }",
	"}",
}

func buildManifest(t *testing.T) (*Manifest, *anonymizer.Result) {
	t.Helper()
	res, err := anonymizer.New(nil).Run(sample)
	require.NoError(t, err)
	return New("Greeter.java", sample, res), res
}

func TestNewRecordsTables(t *testing.T) {
	m, res := buildManifest(t)

	assert.Equal(t, FormatVersion, m.Version)
	assert.Equal(t, "Greeter.java", m.Source)
	assert.Equal(t, Digest(sample), m.SourceDigest)
	assert.True(t, m.Verify(res.Lines))
	assert.False(t, m.Verify(sample))

	assert.Equal(t, []Entry{{0, `"hi"`}, {1, `'x'`}}, m.Literals)
	assert.Equal(t, []Entry{{0, "Greeter"}, {1, "s"}, {2, "c"}, {3, "run"}}, m.Identifiers)
}

func TestDigestIsStable(t *testing.T) {
	a := Digest([]string{"int x;"})
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest([]string{"int x;"}))
	assert.NotEqual(t, a, Digest([]string{"int y;"}))
}

func TestDeanonymizeRestoresNormalizedSource(t *testing.T) {
	m, res := buildManifest(t)

	restored, err := Deanonymize(res.Lines, m)
	require.NoError(t, err)

	want := []string{
		"public class Greeter {",
		`String s = "hi"; char c = 'x';`,
		"void run() { s = s + c; }",
		"}",
	}
	if diff := cmp.Diff(want, restored); diff != "" {
		t.Errorf("Deanonymize() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeanonymizeErrors(t *testing.T) {
	m := &Manifest{
		Version:     FormatVersion,
		Literals:    []Entry{{0, `"a"`}},
		Identifiers: []Entry{{0, "x"}},
	}

	tests := []struct {
		name        string
		line        string
		placeholder string
		want        error
	}{
		{"unknown identifier", "int ident$0 = ident$7;", "ident$7", ErrUnknownPlaceholder},
		{"unknown literal", `f("literal$3");`, `"literal$3"`, ErrUnknownPlaceholder},
		{"unknown char literal", "c = 'char-literal$1';", "'char-literal$1'", ErrUnknownPlaceholder},
		{"non-numeric identifier", "ident$abc = 1;", "ident$abc", ErrMalformedPlaceholder},
		{"empty number", `s = "literal$";`, `"literal$"`, ErrMalformedPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deanonymize([]string{"ok();", tt.line}, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))

			var perr *PlaceholderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, 2, perr.Line)
			assert.Equal(t, tt.placeholder, perr.Placeholder)
		})
	}
}

func TestDeanonymizeIgnoresUnquotedLiteralNames(t *testing.T) {
	m := &Manifest{Version: FormatVersion}
	lines := []string{"x = literal$2 + char-literal$1;"}

	restored, err := Deanonymize(lines, m)
	require.NoError(t, err)
	assert.Equal(t, lines, restored)
}

func TestDeanonymizeNumericSuffix(t *testing.T) {
	raw := []string{"long big = 10L;"}
	res, err := anonymizer.New(nil).Run(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"long ident$0 = 10ident$1;"}, res.Lines)

	restored, err := Deanonymize(res.Lines, New("", raw, res))
	require.NoError(t, err)
	assert.Equal(t, raw, restored)
}

func TestEncodeDecode(t *testing.T) {
	m, _ := buildManifest(t)

	for _, f := range []Format{FormatJSON, FormatYAML, FormatCBOR} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, m, f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			if diff := cmp.Diff(m, got); diff != "" {
				t.Errorf("decoded manifest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCBORIsCanonical(t *testing.T) {
	m, _ := buildManifest(t)

	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, m, FormatCBOR))
	require.NoError(t, Encode(&b, m, FormatCBOR))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestDecodeRejectsIncompatibleVersion(t *testing.T) {
	tests := []struct {
		version string
		errMsg  string
	}{
		{"v2.0.0", "not compatible"},
		{"1.0.0", "not a valid semantic version"},
		{"", "not a valid semantic version"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			doc := `{"version": "` + tt.version + `", "literals": [], "identifiers": []}`
			_, err := Decode(strings.NewReader(doc), FormatJSON)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Decode(strings.NewReader(`{"version": "v1.4.2"}`), FormatJSON)
	assert.NoError(t, err)
}

func TestFormats(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out/Main.java.json", FormatJSON},
		{"out/Main.java.yml", FormatYAML},
		{"out/Main.java.YAML", FormatYAML},
		{"out/Main.java.cbor", FormatCBOR},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatFromPath("manifest")
	assert.Error(t, err)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
	assert.Equal(t, ".cbor", FormatCBOR.Extension())
}
