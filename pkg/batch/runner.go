package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/anonymizer"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/mapping"
	"github.com/BenjyNStrauss/SDP-detection-LLMs/pkg/preprocess"
)

// Result is the outcome for one file. Err is set when the file could not be
// read or anonymized; the other files are unaffected.
type Result struct {
	Path     string
	RelPath  string
	Lines    []string
	Manifest *mapping.Manifest
	Err      error
}

// Runner anonymizes files concurrently. The anonymizer is shared; every file
// gets its own call and therefore its own numbering.
type Runner struct {
	anonymizer *anonymizer.Anonymizer
	workers    int
	logger     *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of files processed at once. Values below one
// select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger used for per-file progress.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner returns a runner around a.
func NewRunner(a *anonymizer.Anonymizer, opts ...Option) *Runner {
	r := &Runner{
		anonymizer: a,
		workers:    runtime.NumCPU(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workers reports the pool size.
func (r *Runner) Workers() int {
	return r.workers
}

// Run anonymizes files, which are expected to live under root. Results come
// back in the order of files. When ctx is cancelled, files not yet started are
// reported with ctx.Err() and Run returns that error too.
func (r *Runner) Run(ctx context.Context, root string, files []string) ([]Result, error) {
	results := make([]Result, len(files))
	semaphore := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			result := &results[index]
			result.Path = path
			result.RelPath = relativePath(root, path)

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				result.Err = ctx.Err()
				return
			}
			defer func() { <-semaphore }()

			// Check cancellation again before executing
			if err := ctx.Err(); err != nil {
				result.Err = err
				return
			}

			r.process(result)
		}(i, path)
	}

	wg.Wait()
	return results, ctx.Err()
}

func (r *Runner) process(result *Result) {
	content, err := os.ReadFile(result.Path)
	if err != nil {
		result.Err = fmt.Errorf("failed to read %s: %w", result.Path, err)
		return
	}

	raw := preprocess.SplitLines(string(content))
	res, err := r.anonymizer.Run(raw)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", result.RelPath, err)
		r.logger.Debug("anonymization failed", "file", result.RelPath, "error", err)
		return
	}

	result.Lines = res.Lines
	result.Manifest = mapping.New(result.RelPath, raw, res)
	r.logger.Debug("anonymized",
		"file", result.RelPath,
		"lines", len(res.Lines),
		"literals", res.Literals.Len(),
		"identifiers", res.Identifiers.Len())
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
