package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/seer/pkg/parser"
)

func writeGoFiles(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("f%d.go", i))
		src := fmt.Sprintf("package p\n\nfunc f%d() int { return %d }\n", i, i)
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		files = append(files, path)
	}
	return files
}

func TestMapParsesEveryFile(t *testing.T) {
	files := writeGoFiles(t, 8)

	names, errs := Map(context.Background(), files, 4, func(p *parser.Parser, path string) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		result, err := p.Parse(data, parser.LangGo, path)
		if err != nil {
			return "", err
		}
		fns := parser.GetFunctions(result)
		if len(fns) == 0 {
			return "", errors.New("no functions")
		}
		return fns[0].Name, nil
	}, nil)

	require.Nil(t, errs)
	require.Len(t, names, 8)
	for _, name := range names {
		assert.True(t, strings.HasPrefix(name, "f"))
	}
}

func TestMapCollectsFailuresWithoutAborting(t *testing.T) {
	files := writeGoFiles(t, 4)
	files = append(files, filepath.Join(t.TempDir(), "missing.go"))

	got, errs := Each(context.Background(), files, 2, func(path string) (string, error) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}, nil)

	assert.Len(t, got, 4)
	require.NotNil(t, errs)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.All()[0].Path, "missing.go")
	assert.Contains(t, errs.Error(), "missing.go")
}

func TestMapProgressFiresPerFile(t *testing.T) {
	files := writeGoFiles(t, 5)
	var ticks atomic.Int64

	_, errs := Each(context.Background(), files, 3, func(path string) (struct{}, error) {
		if strings.HasSuffix(path, "f0.go") {
			return struct{}{}, errors.New("boom")
		}
		return struct{}{}, nil
	}, func() { ticks.Add(1) })

	require.NotNil(t, errs)
	assert.Equal(t, int64(5), ticks.Load())
}

func TestMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, errs := Each(ctx, []string{"a", "b", "c"}, 1, func(path string) (string, error) {
		return path, nil
	}, nil)

	assert.Empty(t, got)
	require.NotNil(t, errs)
	assert.Equal(t, 3, errs.Len())
	assert.ErrorIs(t, errs.All()[0], context.Canceled)
}

func TestMapEmptyInput(t *testing.T) {
	got, errs := Each(context.Background(), nil, 0, func(path string) (string, error) {
		return path, nil
	}, nil)
	assert.Nil(t, got)
	assert.Nil(t, errs)
}

func TestWorkersDefault(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.Greater(t, Workers(0), 0)
	assert.Greater(t, Workers(-1), 0)
}
