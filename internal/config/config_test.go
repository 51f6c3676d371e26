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

	assert.Equal(t, DefaultDataDir(), cfg.DataDir)
	assert.Equal(t, DefaultTokenTarget, cfg.Defaults.TokenTarget)
	assert.Equal(t, DefaultOverlapTokens, cfg.Defaults.OverlapTokens)
	assert.Equal(t, DefaultChunkThreshold, cfg.Defaults.ChunkThreshold)
	assert.EqualValues(t, DefaultMaxFileSizeBytes, cfg.Defaults.MaxFileSizeBytes)
	assert.Equal(t, DefaultEmbeddingProvider, cfg.Embeddings.Provider)
	assert.Empty(t, cfg.Repos)
}

func TestDefaultPaths(t *testing.T) {
	assert.Contains(t, DefaultConfigDir(), "meridian")
	assert.Contains(t, DefaultDataDir(), "meridian")
	assert.Contains(t, DefaultConfigFile(), "config.json")
}

func TestLoadMissingConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTarget, cfg.Defaults.TokenTarget)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	content := `{
		"data_dir": "` + filepath.Join(dir, "data") + `",
		"defaults": {"token_target": 800, "overlap_tokens": 32, "chunk_threshold": 100, "max_file_size_bytes": 5242880},
		"repos": {"/repos/demo": {"token_target": 300}},
		"embeddings": {"provider": "openai", "openai": {"model": "text-embedding-3-large"}}
	}`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Defaults.TokenTarget)
	assert.Equal(t, 32, cfg.Defaults.OverlapTokens)
	assert.Equal(t, 100, cfg.Defaults.ChunkThreshold)
	assert.EqualValues(t, 5242880, cfg.Defaults.MaxFileSizeBytes)
	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, "text-embedding-3-large", cfg.Embeddings.OpenAI.Model)

	override, ok := cfg.Repos["/repos/demo"]
	require.True(t, ok)
	require.NotNil(t, override.TokenTarget)
	assert.Equal(t, 300, *override.TokenTarget)
}

func TestLoadReadsAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Embeddings.OpenAI.APIKey)
}

func TestRepoOptionsMergesOverride(t *testing.T) {
	cfg := DefaultConfig()
	smaller := 250
	cfg.SetRepoOverride("/repos/demo", RepoOverride{TokenTarget: &smaller})

	opts := cfg.RepoOptions("/repos/demo")
	assert.Equal(t, 250, opts.TokenTarget)
	assert.Equal(t, DefaultOverlapTokens, opts.OverlapTokens)

	defaultOpts := cfg.RepoOptions("/repos/other")
	assert.Equal(t, DefaultTokenTarget, defaultOpts.TokenTarget)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.Defaults.TokenTarget = 999
	require.NoError(t, cfg.Save(configPath))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 999, loaded.Defaults.TokenTarget)
}

func TestMetadataAndVectorDBPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data/meridian"
	assert.Equal(t, filepath.Join("/data/meridian", "metadata.db"), cfg.MetadataDBPath())
	assert.Equal(t, filepath.Join("/data/meridian", "vectors.db"), cfg.VectorDBPath())
}

func TestNewEmbedderDefaultsToNaive(t *testing.T) {
	cfg := DefaultConfig()
	emb, err := cfg.NewEmbedder()
	require.NoError(t, err)
	assert.NotNil(t, emb)
}

func TestNewEmbedderUnknownProviderErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embeddings.Provider = "bogus"
	_, err := cfg.NewEmbedder()
	assert.Error(t, err)
}
