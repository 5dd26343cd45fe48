package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors the .repocapsule.toml layout. Integer fields that have
// a meaningful zero (the shingle cap, where 0 means unlimited) are pointers
// so an unset key can be told apart from an explicit zero.
type tomlConfig struct {
	Fingerprint tomlFingerprint `toml:"fingerprint"`
	Dedup       DedupConfig     `toml:"dedup"`
	Input       InputConfig     `toml:"input"`
	Output      OutputConfig    `toml:"output"`
}

type tomlFingerprint struct {
	K           int  `toml:"k"`
	NumHashes   int  `toml:"num_hashes"`
	MaxTokens   *int `toml:"max_tokens"`
	MaxShingles *int `toml:"max_shingles"`
}

// loadTomlFile reads a TOML config file, layered over defaults.
func loadTomlFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var raw tomlConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if raw.Fingerprint.K > 0 {
		cfg.Fingerprint.K = raw.Fingerprint.K
	}
	if raw.Fingerprint.NumHashes > 0 {
		cfg.Fingerprint.NumHashes = raw.Fingerprint.NumHashes
	}
	if raw.Fingerprint.MaxTokens != nil {
		cfg.Fingerprint.MaxTokens = *raw.Fingerprint.MaxTokens
	}
	if raw.Fingerprint.MaxShingles != nil {
		cfg.Fingerprint.MaxShingles = *raw.Fingerprint.MaxShingles
	}

	if raw.Dedup.SimhashHammingMax > 0 {
		cfg.Dedup.SimhashHammingMax = raw.Dedup.SimhashHammingMax
	}
	if raw.Dedup.LSHBands > 0 {
		cfg.Dedup.LSHBands = raw.Dedup.LSHBands
	}
	if raw.Dedup.LSHRows > 0 {
		cfg.Dedup.LSHRows = raw.Dedup.LSHRows
	}
	if raw.Dedup.LSHThreshold > 0 && raw.Dedup.LSHThreshold <= 1 {
		cfg.Dedup.LSHThreshold = raw.Dedup.LSHThreshold
	}
	if raw.Dedup.MinFamilySize > 0 {
		cfg.Dedup.MinFamilySize = raw.Dedup.MinFamilySize
	}
	if raw.Dedup.TopFamilies > 0 {
		cfg.Dedup.TopFamilies = raw.Dedup.TopFamilies
	}

	if len(raw.Input.IncludePatterns) > 0 {
		cfg.Input.IncludePatterns = raw.Input.IncludePatterns
	}
	if len(raw.Input.ExcludePatterns) > 0 {
		cfg.Input.ExcludePatterns = raw.Input.ExcludePatterns
	}

	if raw.Output.Format != "" {
		cfg.Output.Format = raw.Output.Format
	}
	if raw.Output.Directory != "" {
		cfg.Output.Directory = raw.Output.Directory
	}

	return cfg, nil
}

// DefaultTomlContent is the commented configuration template written by
// `repocapsule init`.
const DefaultTomlContent = `# repocapsule configuration
# Text fingerprinting and near-duplicate detection settings.

[fingerprint]
# Shingle width in bytes for MinHash signatures.
k = 5
# Number of MinHash permutations (signature length). Must cover
# dedup.lsh_bands * dedup.lsh_rows.
num_hashes = 128
# Most qualifying word tokens the SimHash fold consumes. 0 disables SimHash.
max_tokens = 20000
# Most byte windows the shingle extractor visits. 0 means unlimited.
max_shingles = 20000

[dedup]
# Maximum SimHash Hamming distance still counted as a near-duplicate.
simhash_hamming_max = 3
# LSH banding parameters over the MinHash signature.
lsh_bands = 32
lsh_rows = 4
# Minimum estimated Jaccard similarity to confirm a candidate pair.
lsh_threshold = 0.78
# Reporting: families need at least this many members, show the largest N.
min_family_size = 2
top_families = 5

[input]
include_patterns = ["**/*"]
exclude_patterns = ["**/.git/**"]

[output]
# text, json, csv, or yaml
format = "text"
# Optional directory for report files; stdout when empty.
directory = ""
`
