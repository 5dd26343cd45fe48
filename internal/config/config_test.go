package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Fingerprint.K)
	assert.Equal(t, 128, cfg.Fingerprint.NumHashes)
	assert.Equal(t, 20000, cfg.Fingerprint.MaxTokens)
	assert.Equal(t, 20000, cfg.Fingerprint.MaxShingles)
	assert.Equal(t, 32, cfg.Dedup.LSHBands)
	assert.Equal(t, 4, cfg.Dedup.LSHRows)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	_, err := LoadConfig("config.ini")
	assert.Error(t, err)
}

func TestLoadConfig_Toml(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".repocapsule.toml", `
[fingerprint]
k = 7
num_hashes = 64
max_shingles = 0

[dedup]
lsh_bands = 16
lsh_threshold = 0.6

[output]
format = "json"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Fingerprint.K)
	assert.Equal(t, 64, cfg.Fingerprint.NumHashes)
	// Explicit zero means an unlimited shingle cap, not the default.
	assert.Equal(t, 0, cfg.Fingerprint.MaxShingles)
	// Unset keys keep their defaults.
	assert.Equal(t, 20000, cfg.Fingerprint.MaxTokens)
	assert.Equal(t, 16, cfg.Dedup.LSHBands)
	assert.Equal(t, 4, cfg.Dedup.LSHRows)
	assert.InDelta(t, 0.6, cfg.Dedup.LSHThreshold, 1e-9)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadConfig_TomlInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.toml", "[fingerprint\nk=")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_Yaml(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "repocapsule.yaml", `
fingerprint:
  k: 9
  num_hashes: 256
dedup:
  lsh_bands: 64
  lsh_rows: 4
input:
  include_patterns:
    - "**/*.txt"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Fingerprint.K)
	assert.Equal(t, 256, cfg.Fingerprint.NumHashes)
	assert.Equal(t, 64, cfg.Dedup.LSHBands)
	assert.Equal(t, []string{"**/*.txt"}, cfg.Input.IncludePatterns)
	// Defaults survive where the file is silent.
	assert.Equal(t, 3, cfg.Dedup.SimhashHammingMax)
}

func TestLoadConfigWithTarget_ExplicitWins(t *testing.T) {
	dir := t.TempDir()
	explicit := writeFile(t, dir, "custom.toml", "[fingerprint]\nk = 11\n")
	writeFile(t, dir, ".repocapsule.toml", "[fingerprint]\nk = 3\n")

	cfg, err := LoadConfigWithTarget(explicit, dir)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.Fingerprint.K)
}

func TestLoadConfigWithTarget_DiscoversInTargetDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".repocapsule.toml", "[fingerprint]\nk = 8\n")

	cfg, err := LoadConfigWithTarget("", dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Fingerprint.K)
}

func TestLoadConfigWithTarget_FileTargetUsesItsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".repocapsule.toml", "[fingerprint]\nk = 6\n")
	target := writeFile(t, dir, "doc.txt", "some document")

	cfg, err := LoadConfigWithTarget("", target)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Fingerprint.K)
}

func TestLoadConfigWithTarget_NoConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfigWithTarget("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Fingerprint.K)
}

func TestDefaultTomlContent_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".repocapsule.toml", DefaultTomlContent)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.applyFallbacks()

	def := DefaultConfig()
	assert.Equal(t, def.Fingerprint.K, cfg.Fingerprint.K)
	assert.Equal(t, def.Dedup.LSHBands, cfg.Dedup.LSHBands)
	assert.Equal(t, def.Output.Format, cfg.Output.Format)
	assert.Equal(t, def.Input.IncludePatterns, cfg.Input.IncludePatterns)
}
