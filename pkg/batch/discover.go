// Package batch anonymizes whole source trees: it finds files, runs one
// independent anonymization per file on a bounded pool of workers and writes
// the results next to optional mapping manifests.
package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Directories never descended into when walking a tree.
var excludeDirs = []string{"build", "vendor", "third_party", "node_modules", "target"}

// FindFiles returns the files under target whose extension is in extensions,
// sorted by path. A target naming a single file is returned as is. Ignore
// patterns are globs matched against both the slash-separated path relative to
// target and the base name.
func FindFiles(target string, extensions, ignore []string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{target}, nil
	}

	var files []string
	err = filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != target && isExcludedDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(target, path)
		if err != nil {
			return err
		}
		if hasExtension(path, extensions) && !shouldIgnore(filepath.ToSlash(rel), ignore) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func isExcludedDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, exclude := range excludeDirs {
		if name == exclude {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func shouldIgnore(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
