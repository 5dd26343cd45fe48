// Package config loads repocapsule configuration from .repocapsule.toml or
// repocapsule.yaml files and supplies defaults mirroring the fingerprint
// core's constants.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/JochiRaider/RepoCapsule/internal/qc"
)

// FingerprintConfig controls how document fingerprints are computed.
type FingerprintConfig struct {
	K           int `mapstructure:"k" toml:"k"`
	NumHashes   int `mapstructure:"num_hashes" toml:"num_hashes"`
	MaxTokens   int `mapstructure:"max_tokens" toml:"max_tokens"`
	MaxShingles int `mapstructure:"max_shingles" toml:"max_shingles"`
}

// DedupConfig controls the near-duplicate scan.
type DedupConfig struct {
	SimhashHammingMax int     `mapstructure:"simhash_hamming_max" toml:"simhash_hamming_max"`
	LSHBands          int     `mapstructure:"lsh_bands" toml:"lsh_bands"`
	LSHRows           int     `mapstructure:"lsh_rows" toml:"lsh_rows"`
	LSHThreshold      float64 `mapstructure:"lsh_threshold" toml:"lsh_threshold"`
	MinFamilySize     int     `mapstructure:"min_family_size" toml:"min_family_size"`
	TopFamilies       int     `mapstructure:"top_families" toml:"top_families"`
}

// InputConfig controls file collection.
type InputConfig struct {
	IncludePatterns []string `mapstructure:"include_patterns" toml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" toml:"exclude_patterns"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format    string `mapstructure:"format" toml:"format"`
	Directory string `mapstructure:"directory" toml:"directory"`
}

// Config is the full repocapsule configuration.
type Config struct {
	Fingerprint FingerprintConfig `mapstructure:"fingerprint" toml:"fingerprint"`
	Dedup       DedupConfig       `mapstructure:"dedup" toml:"dedup"`
	Input       InputConfig       `mapstructure:"input" toml:"input"`
	Output      OutputConfig      `mapstructure:"output" toml:"output"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Fingerprint: FingerprintConfig{
			K:           5,
			NumHashes:   128,
			MaxTokens:   qc.DefaultMaxTokens,
			MaxShingles: qc.DefaultMaxShingles,
		},
		Dedup: DedupConfig{
			SimhashHammingMax: 3,
			LSHBands:          32,
			LSHRows:           4,
			LSHThreshold:      0.78,
			MinFamilySize:     2,
			TopFamilies:       5,
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*"},
			ExcludePatterns: []string{"**/.git/**"},
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// configFileNames are searched in order inside a target directory.
var configFileNames = []string{
	".repocapsule.toml",
	"repocapsule.yaml",
	"repocapsule.yml",
}

// LoadConfig reads configuration from path, dispatching on extension.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	switch filepath.Ext(path) {
	case ".toml":
		return loadTomlFile(path)
	case ".yaml", ".yml":
		return loadYamlFile(path)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

// LoadConfigWithTarget loads an explicit config file when given, otherwise
// discovers one in the target directory (falling back to the working
// directory and then to defaults).
func LoadConfigWithTarget(explicitPath, targetPath string) (*Config, error) {
	if explicitPath != "" {
		return LoadConfig(explicitPath)
	}

	var dirs []string
	if targetPath != "" {
		if info, err := os.Stat(targetPath); err == nil {
			if info.IsDir() {
				dirs = append(dirs, targetPath)
			} else {
				dirs = append(dirs, filepath.Dir(targetPath))
			}
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}

	for _, dir := range dirs {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return LoadConfig(candidate)
			}
		}
	}
	return DefaultConfig(), nil
}

// loadYamlFile reads a YAML config through viper, layered over defaults.
func loadYamlFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyFallbacks()
	return cfg, nil
}

// applyFallbacks replaces zero values that would break analysis with the
// corresponding defaults.
func (c *Config) applyFallbacks() {
	def := DefaultConfig()
	if c.Fingerprint.K <= 0 {
		c.Fingerprint.K = def.Fingerprint.K
	}
	if c.Fingerprint.NumHashes <= 0 {
		c.Fingerprint.NumHashes = def.Fingerprint.NumHashes
	}
	if c.Dedup.LSHBands <= 0 {
		c.Dedup.LSHBands = def.Dedup.LSHBands
	}
	if c.Dedup.LSHRows <= 0 {
		c.Dedup.LSHRows = def.Dedup.LSHRows
	}
	if c.Dedup.LSHThreshold <= 0 || c.Dedup.LSHThreshold > 1 {
		c.Dedup.LSHThreshold = def.Dedup.LSHThreshold
	}
	if c.Dedup.TopFamilies <= 0 {
		c.Dedup.TopFamilies = def.Dedup.TopFamilies
	}
	if c.Dedup.MinFamilySize <= 0 {
		c.Dedup.MinFamilySize = def.Dedup.MinFamilySize
	}
	if c.Output.Format == "" {
		c.Output.Format = def.Output.Format
	}
	if len(c.Input.IncludePatterns) == 0 {
		c.Input.IncludePatterns = def.Input.IncludePatterns
	}
}
