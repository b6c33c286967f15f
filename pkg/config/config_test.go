package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, int64(5000), cfg.Engine.TimeoutMs)
	assert.True(t, cfg.Engine.PerformanceMetrics)
	assert.False(t, cfg.Engine.DetectHotspots)
	assert.Equal(t, 30, cfg.Churn.Days)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".seer/cache", cfg.Cache.Dir)
	assert.Equal(t, 168, cfg.Cache.TTL)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.True(t, cfg.Exclude.Gitignore)
	assert.Contains(t, cfg.Exclude.Dirs, "node_modules")
	assert.Equal(t, ".seer/patterns", cfg.Patterns.Dir)
	assert.Zero(t, cfg.Workers)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "seer.toml", `
workers = 4

[engine]
timeout_ms = 250
detect_hotspots = true

[churn]
days = 90

[output]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(250), cfg.Engine.TimeoutMs)
	assert.True(t, cfg.Engine.DetectHotspots)
	assert.Equal(t, 90, cfg.Churn.Days)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Workers)

	// Untouched sections keep their defaults.
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Engine.PerformanceMetrics)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "seer.yaml", `
engine:
  timeout_ms: 100
exclude:
  patterns:
    - "*.gen.go"
  gitignore: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.Engine.TimeoutMs)
	assert.Equal(t, []string{"*.gen.go"}, cfg.Exclude.Patterns)
	assert.False(t, cfg.Exclude.Gitignore)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "seer.json", `{"output": {"format": "toon", "color": false}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "toon", cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefaultFindsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seer.toml"), []byte("[churn]\ndays = 14\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := LoadOrDefault()
	assert.Equal(t, 14, cfg.Churn.Days)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := LoadOrDefault()
	assert.Equal(t, int64(5000), cfg.Engine.TimeoutMs)
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"internal/flow/engine.go", false},
		{"vendor/github.com/x/y.go", true},
		{"web/node_modules/left-pad/index.js", true},
		{"internal/flow/engine_test.go", true},
		{"go.sum", true},
		{"app.min.js", true},
		{"cmd/seer/main.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.ShouldExclude(tt.path), tt.path)
	}
}
