package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/ingest"
	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/vectorstore"
)

var (
	ingestFileRepo      string
	ingestFileThreshold int
)

// ingestFileCmd force-ingests specific files that were skipped due to size.
var ingestFileCmd = &cobra.Command{
	Use:   "ingest-file <files...>",
	Short: "Force-ingest specific file(s) that were skipped due to size",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestFile,
}

func init() {
	ingestFileCmd.Flags().StringVarP(&ingestFileRepo, "repo", "r", "", "repository name")
	ingestFileCmd.Flags().IntVarP(&ingestFileThreshold, "threshold", "t", 0, "override chunk threshold")
	_ = ingestFileCmd.MarkFlagRequired("repo")
}

func runIngestFile(cmd *cobra.Command, args []string) error {
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

	opts := cfg.RepoOptions(ingestFileRepo)
	if ingestFileThreshold > 0 {
		opts.ChunkThreshold = ingestFileThreshold
	}

	pipeline := &ingest.Pipeline{Meta: meta, Vector: vectors}
	summary, err := pipeline.IngestFiles(context.Background(), ingestFileRepo, args, opts)
	if err != nil {
		return fmt.Errorf("ingest files: %w", err)
	}

	fmt.Printf("Done! %d files processed, %d chunks indexed\n", summary.Added, summary.Chunks)
	return nil
}
