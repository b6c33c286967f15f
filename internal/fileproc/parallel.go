// Package fileproc runs per-file work across a bounded goroutine pool. One
// failing file never aborts the batch; failures are collected and reported
// alongside the successful results.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/seerlab/seer/pkg/parser"
)

// defaultWorkerMultiplier scales NumCPU for the pool size. Parsing mixes
// CGO calls with file IO, so oversubscribing the CPUs pays off.
const defaultWorkerMultiplier = 2

// FileError is one file's failure.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// FileErrors collects per-file failures from one batch.
type FileErrors struct {
	mu     sync.Mutex
	errors []FileError
}

func (e *FileErrors) add(path string, err error) {
	e.mu.Lock()
	e.errors = append(e.errors, FileError{Path: path, Err: err})
	e.mu.Unlock()
}

// All returns the collected failures.
func (e *FileErrors) All() []FileError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]FileError(nil), e.errors...)
}

// Len returns the number of failures.
func (e *FileErrors) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors)
}

func (e *FileErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.errors) {
	case 0:
		return "no errors"
	case 1:
		return e.errors[0].Error()
	default:
		return fmt.Sprintf("%d files failed (first: %v)", len(e.errors), e.errors[0])
	}
}

// Workers returns the pool size for a configured worker count, applying
// the default when n is zero or negative.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * defaultWorkerMultiplier
}

// Map runs fn over files with a dedicated parser per invocation. Results
// arrive in arbitrary order. onProgress, when non-nil, is called once per
// file whether it succeeded or not. A cancelled context stops scheduling;
// files skipped by cancellation are recorded as failures.
func Map[T any](ctx context.Context, files []string, workers int, fn func(*parser.Parser, string) (T, error), onProgress func()) ([]T, *FileErrors) {
	return run(ctx, files, workers, onProgress, func(path string) (T, error) {
		psr := parser.New()
		defer psr.Close()
		return fn(psr, path)
	})
}

// Each runs fn over files without a parser, for text-level work.
func Each[T any](ctx context.Context, files []string, workers int, fn func(string) (T, error), onProgress func()) ([]T, *FileErrors) {
	return run(ctx, files, workers, onProgress, fn)
}

func run[T any](ctx context.Context, files []string, workers int, onProgress func(), fn func(string) (T, error)) ([]T, *FileErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]T, 0, len(files))
	errs := &FileErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(Workers(workers))
	for _, path := range files {
		p.Go(func() {
			if onProgress != nil {
				defer onProgress()
			}

			select {
			case <-ctx.Done():
				errs.add(path, ctx.Err())
				return
			default:
			}

			result, err := fn(path)
			if err != nil {
				errs.add(path, err)
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if errs.Len() == 0 {
		return results, nil
	}
	return results, errs
}
