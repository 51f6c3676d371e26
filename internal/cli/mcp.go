package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/mcp"
	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/vectorstore"
)

// mcpCmd starts the JSON-RPC/MCP tool server for AI agent integration.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP tool server for AI agent integration",
	Long: `Start a Model Context Protocol server for integration with AI coding
agents. The server communicates via stdin/stdout using JSON-RPC 2.0 and
exposes three tools: query, list_files, and read_chunk.`,
	RunE: runMcpCmd,
}

func runMcpCmd(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	meta, err := metastore.Open(cfg.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	embedder, err := cfg.NewEmbedder()
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	vectors, err := vectorstore.Open(cfg.VectorDBPath(), embedder)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer vectors.Close()

	server := mcp.NewServer(meta, vectors)
	return server.Run(ctx)
}
