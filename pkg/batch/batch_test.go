package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/anonymizer"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/mapping"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"src/Main.java":              "public class Main {\n  String s = \"hi\";\n}\n",
		"src/util/Helper.java":       "class Helper { int count = 0; }\n",
		"src/util/Broken.java":       "class Broken { String s = \"open; }\n",
		"src/util/notes.txt":         "not java\n",
		"src/generated/Stub.java":    "class Stub {}\n",
		".git/Hidden.java":           "class Hidden {}\n",
		"build/Output.java":          "class Output {}\n",
		"test/MainTest.java":         "class MainTest {}\n",
		"test/fixtures/Fixture.java": "class Fixture {}\n",
	})
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestFindFiles(t *testing.T) {
	root := sampleTree(t)

	files, err := FindFiles(root, []string{".java"}, []string{"src/generated/*", "*Test.java"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/Main.java",
		"src/util/Broken.java",
		"src/util/Helper.java",
		"test/fixtures/Fixture.java",
	}, rel(t, root, files))
}

func TestFindFilesSingleFile(t *testing.T) {
	root := sampleTree(t)
	target := filepath.Join(root, "src", "util", "notes.txt")

	files, err := FindFiles(target, []string{".java"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, files)

	_, err = FindFiles(filepath.Join(root, "missing"), []string{".java"}, nil)
	assert.Error(t, err)
}

func TestRunnerCollectsPerFileErrors(t *testing.T) {
	root := sampleTree(t)
	files, err := FindFiles(filepath.Join(root, "src"), []string{".java"}, []string{"generated/*"})
	require.NoError(t, err)

	runner := NewRunner(anonymizer.New(nil), WithWorkers(2))
	assert.Equal(t, 2, runner.Workers())

	results, err := runner.Run(context.Background(), filepath.Join(root, "src"), files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Main.java", results[0].RelPath)
	assert.Equal(t, []string{
		"public class ident$0 {",
		`String ident$1 = "literal$0";`,
		"}",
	}, results[0].Lines)
	assert.Equal(t, "Main.java", results[0].Manifest.Source)

	assert.Equal(t, "util/Broken.java", results[1].RelPath)
	var litErr *anonymizer.LiteralError
	require.True(t, errors.As(results[1].Err, &litErr))

	// Each file numbers from zero on its own.
	assert.Equal(t, []string{"class ident$0 { int ident$1 = 0; }"}, results[2].Lines)

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "util/Broken.java", failed[0].RelPath)
}

func TestRunnerCancelled(t *testing.T) {
	root := sampleTree(t)
	files, err := FindFiles(root, []string{".java"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner(anonymizer.New(nil)).Run(ctx, root, files)
	assert.ErrorIs(t, err, context.Canceled)
	for _, result := range results {
		assert.ErrorIs(t, result.Err, context.Canceled, result.RelPath)
	}
}

func TestWriterMirrorsTree(t *testing.T) {
	root := sampleTree(t)
	src := filepath.Join(root, "src")
	files, err := FindFiles(src, []string{".java"}, []string{"generated/*"})
	require.NoError(t, err)

	results, err := NewRunner(anonymizer.New(nil)).Run(context.Background(), src, files)
	require.NoError(t, err)

	out := filepath.Join(root, "out")
	writer := &Writer{OutDir: out, Format: mapping.FormatYAML}
	written, err := writer.Write(results)
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.Equal(t, filepath.Join(out, "util", "Helper.java"), written[1].Output)
	assert.Equal(t, -1, written[1].Class)

	content, err := os.ReadFile(written[1].Output)
	require.NoError(t, err)
	assert.Equal(t, "class ident$0 { int ident$1 = 0; }\n", string(content))

	manifestFile, err := os.Open(written[1].Manifest)
	require.NoError(t, err)
	defer manifestFile.Close()
	manifest, err := mapping.Decode(manifestFile, mapping.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "util/Helper.java", manifest.Source)

	_, err = os.Stat(filepath.Join(out, IndexFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestWriterBlindMode(t *testing.T) {
	root := sampleTree(t)
	files, err := FindFiles(root, []string{".java"}, []string{"*Test.java", "src/generated/*", "Broken.java"})
	require.NoError(t, err)

	results, err := NewRunner(anonymizer.New(nil), WithWorkers(1)).Run(context.Background(), root, files)
	require.NoError(t, err)

	out := t.TempDir()
	written, err := (&Writer{OutDir: out, Blind: true}).Write(results)
	require.NoError(t, err)
	require.Len(t, written, 3)

	for i, w := range written {
		assert.Equal(t, i, w.Class)
		assert.Empty(t, w.Manifest)
	}
	assert.Equal(t, filepath.Join(out, "class0.java"), written[0].Output)

	index, err := os.ReadFile(filepath.Join(out, IndexFileName))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"File: src/Main.java = class#0",
		"File: src/util/Helper.java = class#1",
		"File: test/fixtures/Fixture.java = class#2",
	}, "\n")+"\n", string(index))

	entries, err := ReadIndex(strings.NewReader(string(index)))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, IndexEntry{Path: "src/util/Helper.java", Class: 1}, entries[1])
	assert.Equal(t, "Helper", entries[1].ClassName())
}

func TestReadIndexRejectsMalformedLines(t *testing.T) {
	_, err := ReadIndex(strings.NewReader("File: A.java = class#0\n\nA.java -> class#1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index line 3")
}
