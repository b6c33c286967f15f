package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/seer/internal/flow"
	"github.com/seerlab/seer/pkg/models"
)

var (
	_ flow.BlockStore = (*Memory)(nil)
	_ flow.BlockStore = (*File)(nil)
)

func sampleBlocks(symbol string) []models.Block {
	return []models.Block{
		{ID: "block_0", SymbolName: symbol, Type: models.BlockEntry, StartLine: 1},
		{ID: "block_1", SymbolName: symbol, Type: models.BlockReturn, StartLine: 2, Code: "return x"},
		{ID: "block_2", SymbolName: symbol, Type: models.BlockExit, StartLine: 3},
	}
}

func TestMemoryReplaceBlocks(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.ReplaceBlocks(ctx, "sym-1", sampleBlocks("f")))
	assert.Len(t, m.Blocks("sym-1"), 3)

	// Replacing removes the prior set entirely.
	require.NoError(t, m.ReplaceBlocks(ctx, "sym-1", sampleBlocks("f")[:2]))
	assert.Len(t, m.Blocks("sym-1"), 2)

	require.NoError(t, m.ReplaceBlocks(ctx, "sym-1", nil))
	assert.Nil(t, m.Blocks("sym-1"))
}

func TestMemoryBlocksReturnsCopy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.ReplaceBlocks(context.Background(), "sym-1", sampleBlocks("f")))

	got := m.Blocks("sym-1")
	got[0].ID = "mutated"
	assert.Equal(t, "block_0", m.Blocks("sym-1")[0].ID)
}

func TestMemorySymbols(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.ReplaceBlocks(ctx, "a", sampleBlocks("f")))
	require.NoError(t, m.ReplaceBlocks(ctx, "b", sampleBlocks("g")))

	assert.ElementsMatch(t, []string{"a", "b"}, m.Symbols())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.json")
	ctx := context.Background()

	f := NewFile(path)
	require.NoError(t, f.ReplaceBlocks(ctx, "sym-1", sampleBlocks("f")))

	// A fresh instance reads back what the first one wrote.
	reopened := NewFile(path)
	got, err := reopened.Blocks("sym-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "return x", got[1].Code)

	missing, err := reopened.Blocks("sym-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileReplaceDeletesPriorSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.json")
	ctx := context.Background()

	f := NewFile(path)
	require.NoError(t, f.ReplaceBlocks(ctx, "sym-1", sampleBlocks("f")))
	require.NoError(t, f.ReplaceBlocks(ctx, "sym-1", nil))

	got, err := NewFile(path).Blocks("sym-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "blocks.json")

	f := NewFile(path)
	require.NoError(t, f.ReplaceBlocks(context.Background(), "sym-1", sampleBlocks("f")))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewFile(path).Blocks("sym-1")
	assert.Error(t, err)
}
