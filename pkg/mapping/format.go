package mapping

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v2"
)

// Format is a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ParseFormat accepts a format name, case-insensitively. "yml" is an alias for yaml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unsupported manifest format: %s", name)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer manifest format from %s", path)
	}
	return ParseFormat(ext)
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Encode writes m to w. CBOR output uses canonical encoding so equal manifests
// produce identical bytes.
func Encode(w io.Writer, m *Manifest, f Format) error {
	switch f {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(m)
	case FormatYAML:
		data, err := yaml.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode YAML manifest: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatCBOR:
		encMode, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return fmt.Errorf("failed to create CBOR encoder: %w", err)
		}
		data, err := encMode.Marshal(m)
		if err != nil {
			return fmt.Errorf("CBOR encoding failed: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported manifest format: %s", f)
	}
}

// Decode reads a manifest and checks that its version is compatible with
// FormatVersion.
func Decode(r io.Reader, f Format) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatCBOR:
		err = cbor.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s manifest: %w", f, err)
	}

	if !semver.IsValid(m.Version) {
		return nil, fmt.Errorf("manifest version %q is not a valid semantic version", m.Version)
	}
	if semver.Major(m.Version) != semver.Major(FormatVersion) {
		return nil, fmt.Errorf("manifest version %s is not compatible with %s", m.Version, FormatVersion)
	}
	return &m, nil
}
