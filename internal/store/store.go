// Package store persists the block graphs produced by flow analysis. Both
// implementations satisfy the engine's BlockStore contract: replacing a
// symbol's blocks removes every previously stored block for that symbol
// before inserting the new set.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/seerlab/seer/pkg/models"
)

// Memory keeps blocks in process memory. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	blocks map[string][]models.Block
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blocks: make(map[string][]models.Block)}
}

// ReplaceBlocks swaps the stored set for symbolID with blocks.
func (m *Memory) ReplaceBlocks(_ context.Context, symbolID string, blocks []models.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, symbolID)
	if len(blocks) > 0 {
		m.blocks[symbolID] = append([]models.Block(nil), blocks...)
	}
	return nil
}

// Blocks returns the stored set for symbolID, or nil when absent.
func (m *Memory) Blocks(symbolID string) []models.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.blocks[symbolID]
	if !ok {
		return nil
	}
	return append([]models.Block(nil), stored...)
}

// Symbols lists the symbol ids with stored blocks.
func (m *Memory) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.blocks))
	for id := range m.blocks {
		out = append(out, id)
	}
	return out
}

// File persists blocks as a single JSON document, rewritten atomically on
// every replace. Suited to CLI runs, not high write rates.
type File struct {
	path string

	mu     sync.Mutex
	loaded bool
	blocks map[string][]models.Block
}

// NewFile creates a store backed by the JSON file at path. The file is
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// ReplaceBlocks swaps the stored set for symbolID and rewrites the file.
func (f *File) ReplaceBlocks(_ context.Context, symbolID string, blocks []models.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}

	delete(f.blocks, symbolID)
	if len(blocks) > 0 {
		f.blocks[symbolID] = append([]models.Block(nil), blocks...)
	}
	return f.flush()
}

// Blocks returns the stored set for symbolID, or nil when absent.
func (f *File) Blocks(symbolID string) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}
	stored, ok := f.blocks[symbolID]
	if !ok {
		return nil, nil
	}
	return append([]models.Block(nil), stored...), nil
}

func (f *File) load() error {
	if f.loaded {
		return nil
	}
	f.blocks = make(map[string][]models.Block)

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, &f.blocks); err != nil {
		return fmt.Errorf("store: decode %s: %w", f.path, err)
	}
	f.loaded = true
	return nil
}

func (f *File) flush() error {
	data, err := json.MarshalIndent(f.blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: create dir: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}
