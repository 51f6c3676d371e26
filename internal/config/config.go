// Package config loads and resolves meridian's settings: a global JSON
// file plus per-repository overrides, the way the original tool's
// settings module works, wired through viper the way the teacher wires
// its YAML config.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Defaults holds the chunking/walking parameters applied to every
// repository unless overridden.
type Defaults struct {
	TokenTarget      int   `mapstructure:"token_target" json:"token_target"`
	OverlapTokens    int   `mapstructure:"overlap_tokens" json:"overlap_tokens"`
	ChunkThreshold   int   `mapstructure:"chunk_threshold" json:"chunk_threshold"`
	MaxFileSizeBytes int64 `mapstructure:"max_file_size_bytes" json:"max_file_size_bytes"`
}

// RepoOverride holds per-repository parameter overrides. A nil field
// means "use the global default".
type RepoOverride struct {
	TokenTarget      *int   `mapstructure:"token_target" json:"token_target,omitempty"`
	OverlapTokens    *int   `mapstructure:"overlap_tokens" json:"overlap_tokens,omitempty"`
	ChunkThreshold   *int   `mapstructure:"chunk_threshold" json:"chunk_threshold,omitempty"`
	MaxFileSizeBytes *int64 `mapstructure:"max_file_size_bytes" json:"max_file_size_bytes,omitempty"`
}

// EmbeddingsConfig selects and configures the vector store's embedder.
type EmbeddingsConfig struct {
	Provider string            `mapstructure:"provider" json:"provider"`
	Ollama   OllamaEmbedConfig `mapstructure:"ollama" json:"ollama"`
	OpenAI   OpenAIEmbedConfig `mapstructure:"openai" json:"openai"`
}

// OllamaEmbedConfig configures the Ollama embedder.
type OllamaEmbedConfig struct {
	URL   string `mapstructure:"url" json:"url"`
	Model string `mapstructure:"model" json:"model"`
}

// OpenAIEmbedConfig configures the OpenAI embedder.
type OpenAIEmbedConfig struct {
	Model      string `mapstructure:"model" json:"model"`
	BaseURL    string `mapstructure:"base_url" json:"base_url,omitempty"`
	APIKey     string `mapstructure:"api_key" json:"-"`
	Dimensions int    `mapstructure:"dimensions" json:"dimensions,omitempty"`
}

// Config is meridian's fully resolved configuration.
type Config struct {
	DataDir    string                  `mapstructure:"data_dir" json:"data_dir,omitempty"`
	Defaults   Defaults                `mapstructure:"defaults" json:"defaults"`
	Repos      map[string]RepoOverride `mapstructure:"repos" json:"repos"`
	Embeddings EmbeddingsConfig        `mapstructure:"embeddings" json:"embeddings"`
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Defaults: Defaults{
			TokenTarget:      DefaultTokenTarget,
			OverlapTokens:    DefaultOverlapTokens,
			ChunkThreshold:   DefaultChunkThreshold,
			MaxFileSizeBytes: DefaultMaxFileSizeBytes,
		},
		Repos: map[string]RepoOverride{},
		Embeddings: EmbeddingsConfig{
			Provider: DefaultEmbeddingProvider,
			Ollama:   OllamaEmbedConfig{URL: DefaultOllamaURL, Model: DefaultOllamaModel},
			OpenAI:   OpenAIEmbedConfig{Model: DefaultOpenAIModel},
		},
	}
}

// Load reads configuration from configFile (or the default location if
// empty), falling back to defaults for anything unset. Unlike a global
// viper singleton, each call gets its own viper instance so callers
// (including tests) can load independent configs side by side.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(DefaultConfigDir())
	}

	v.SetEnvPrefix("MERIDIAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Debug("no config file found, using defaults")
	} else {
		log.Debug("loaded config", "file", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Repos == nil {
		cfg.Repos = map[string]RepoOverride{}
	}

	loadAPIKeyFromEnv(cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("defaults.token_target", DefaultTokenTarget)
	v.SetDefault("defaults.overlap_tokens", DefaultOverlapTokens)
	v.SetDefault("defaults.chunk_threshold", DefaultChunkThreshold)
	v.SetDefault("defaults.max_file_size_bytes", DefaultMaxFileSizeBytes)
	v.SetDefault("embeddings.provider", DefaultEmbeddingProvider)
	v.SetDefault("embeddings.ollama.url", DefaultOllamaURL)
	v.SetDefault("embeddings.ollama.model", DefaultOllamaModel)
	v.SetDefault("embeddings.openai.model", DefaultOpenAIModel)
}

func loadAPIKeyFromEnv(cfg *Config) {
	if cfg.Embeddings.OpenAI.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Embeddings.OpenAI.APIKey = key
		}
	}
}

// Save writes cfg to configFile (or the default location if empty) as
// indented JSON, creating parent directories as needed.
func (c *Config) Save(configFile string) error {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// MetadataDBPath returns the path to the SQLite metadata database under
// the configured data directory.
func (c *Config) MetadataDBPath() string {
	return filepath.Join(c.DataDir, metaDBFileName)
}

// VectorDBPath returns the path to the SQLite vector-store database
// under the configured data directory.
func (c *Config) VectorDBPath() string {
	return filepath.Join(c.DataDir, vectorDBFileName)
}

// EnsureDirs creates the config and data directories if they don't exist.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(DefaultConfigDir(), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
