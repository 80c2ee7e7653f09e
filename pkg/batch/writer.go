package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/mapping"
)

// IndexFileName is the blind-mode index written into the output directory.
const IndexFileName = "@readme.txt"

// Writer stores results under OutDir, mirroring their relative paths. With
// Blind set, files are renamed classN (keeping the extension) in path order
// and an index records the original names.
type Writer struct {
	OutDir string
	Format mapping.Format // empty disables manifests
	Blind  bool
}

// Written describes one file produced by Write.
type Written struct {
	RelPath  string
	Output   string
	Manifest string
	Class    int // -1 unless blind
}

// Write stores every successful result and returns what was written, in path
// order. Failed results are skipped.
func (w *Writer) Write(results []Result) ([]Written, error) {
	ok := make([]Result, 0, len(results))
	for _, result := range results {
		if result.Err == nil {
			ok = append(ok, result)
		}
	}
	sort.Slice(ok, func(i, j int) bool { return ok[i].RelPath < ok[j].RelPath })

	if err := os.MkdirAll(w.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]Written, 0, len(ok))
	var index []IndexEntry
	for i, result := range ok {
		entry := Written{RelPath: result.RelPath, Class: -1}

		rel := filepath.FromSlash(result.RelPath)
		if w.Blind {
			entry.Class = i
			rel = fmt.Sprintf("class%d%s", i, filepath.Ext(rel))
			index = append(index, IndexEntry{Path: result.RelPath, Class: i})
		}

		entry.Output = filepath.Join(w.OutDir, rel)
		if err := writeLines(entry.Output, result.Lines); err != nil {
			return written, err
		}

		if w.Format != "" && result.Manifest != nil {
			entry.Manifest = entry.Output + w.Format.Extension()
			if err := writeManifest(entry.Manifest, result.Manifest, w.Format); err != nil {
				return written, err
			}
		}
		written = append(written, entry)
	}

	if w.Blind {
		if err := writeIndex(filepath.Join(w.OutDir, IndexFileName), index); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeManifest(path string, m *mapping.Manifest, format mapping.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest %s: %w", path, err)
	}
	defer file.Close()

	if err := mapping.Encode(file, m, format); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return file.Close()
}

// IndexEntry is one line of the blind-mode index.
type IndexEntry struct {
	Path  string // original path relative to the batch root
	Class int
}

// ClassName returns the original file name without directories or extension.
func (e IndexEntry) ClassName() string {
	base := filepath.Base(filepath.FromSlash(e.Path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeIndex(path string, entries []IndexEntry) error {
	var content strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&content, "File: %s = class#%d\n", entry.Path, entry.Class)
	}
	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

var indexLine = regexp.MustCompile(`^File: (.+) = class#(\d+)$`)

// ReadIndex parses a blind-mode index. Blank lines are skipped; anything else
// that does not match the index format is an error.
func ReadIndex(r io.Reader) ([]IndexEntry, error) {
	var entries []IndexEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		m := indexLine.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("index line %d: malformed entry %q", lineNo, line)
		}
		class, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("index line %d: %w", lineNo, err)
		}
		entries = append(entries, IndexEntry{Path: m[1], Class: class})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return entries, nil
}
