// Package config loads seer configuration from TOML, YAML or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for seer.
type Config struct {
	// Flow engine settings
	Engine EngineConfig `koanf:"engine"`

	// Git churn settings for hotspot detection
	Churn ChurnConfig `koanf:"churn"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`

	// Custom language pattern definitions
	Patterns PatternsConfig `koanf:"patterns"`

	// Worker pool size for batch analysis. 0 means 2x NumCPU.
	Workers int `koanf:"workers"`
}

// EngineConfig controls one flow analysis invocation.
type EngineConfig struct {
	TimeoutMs          int64  `koanf:"timeout_ms"`
	PerformanceMetrics bool   `koanf:"performance_metrics"`
	DetectHotspots     bool   `koanf:"detect_hotspots"`
	IncludeDataFlow    bool   `koanf:"include_data_flow"`
	MaxDepth           int    `koanf:"max_depth"`
	CallGraphDepth     int    `koanf:"call_graph_depth"`
	StorePath          string `koanf:"store_path"`
}

// ChurnConfig controls how far back the commit log is read.
type ChurnConfig struct {
	Days int `koanf:"days"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// PatternsConfig points at a directory of YAML language definitions used by
// the pattern fallback builder.
type PatternsConfig struct {
	Dir string `koanf:"dir"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			TimeoutMs:          5000,
			PerformanceMetrics: true,
			DetectHotspots:     false,
			IncludeDataFlow:    false,
		},
		Churn: ChurnConfig{
			Days: 30,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.go",
				"*.test.ts",
				"*.spec.js",
				"*.min.js",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".seer",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".seer/cache",
			TTL:     168,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Patterns: PatternsConfig{
			Dir: ".seer/patterns",
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard locations, falling back to the defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"seer.toml",
		"seer.yaml",
		"seer.yml",
		"seer.json",
		".seer.toml",
		".seer.yaml",
		".seer.yml",
		".seer.json",
	}
	searchDirs := []string{".", ".seer"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
