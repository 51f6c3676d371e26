package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/config"
	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/ui"
)

// configCmd shows the currently resolved configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

// initCmd initializes the config file and data directories.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config and data directories",
	RunE:  runInit,
}

func runConfig(cmd *cobra.Command, args []string) error {
	fmt.Printf("Config file:  %s\n", config.DefaultConfigFile())
	fmt.Printf("Data dir:     %s\n", cfg.DataDir)
	fmt.Printf("SQLite:       %s\n", cfg.MetadataDBPath())
	fmt.Printf("Vector store: %s\n", cfg.VectorDBPath())
	fmt.Println()

	fmt.Println(ui.SectionTitle.Render("Defaults:"))
	fmt.Printf("  token_target: %d\n", cfg.Defaults.TokenTarget)
	fmt.Printf("  overlap_tokens: %d\n", cfg.Defaults.OverlapTokens)
	fmt.Printf("  chunk_threshold: %d\n", cfg.Defaults.ChunkThreshold)
	fmt.Printf("  max_file_size_bytes: %d\n", cfg.Defaults.MaxFileSizeBytes)

	fmt.Println()
	fmt.Println(ui.SectionTitle.Render("Embeddings:"))
	fmt.Printf("  provider: %s\n", cfg.Embeddings.Provider)
	fmt.Printf("  ollama.url: %s\n", cfg.Embeddings.Ollama.URL)
	fmt.Printf("  ollama.model: %s\n", cfg.Embeddings.Ollama.Model)
	fmt.Printf("  openai.model: %s\n", cfg.Embeddings.OpenAI.Model)

	if len(cfg.Repos) > 0 {
		fmt.Println()
		fmt.Println(ui.SectionTitle.Render("Per-repo overrides:"))
		for repoPath, override := range cfg.Repos {
			fmt.Printf("  %s:\n", repoPath)
			if override.TokenTarget != nil {
				fmt.Printf("    token_target: %d\n", *override.TokenTarget)
			}
			if override.OverlapTokens != nil {
				fmt.Printf("    overlap_tokens: %d\n", *override.OverlapTokens)
			}
			if override.ChunkThreshold != nil {
				fmt.Printf("    chunk_threshold: %d\n", *override.ChunkThreshold)
			}
			if override.MaxFileSizeBytes != nil {
				fmt.Printf("    max_file_size_bytes: %d\n", *override.MaxFileSizeBytes)
			}
		}
	}

	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	configFile := config.DefaultConfigFile()
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := cfg.Save(configFile); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("Created config at %s\n", configFile)
	} else {
		fmt.Printf("Config already exists at %s\n", configFile)
	}

	meta, err := metastore.Open(cfg.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	fmt.Printf("Database ready at %s\n", cfg.MetadataDBPath())
	return nil
}
