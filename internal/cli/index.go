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
	ingestName  string
	ingestForce bool
)

// ingestCmd ingests a repository for semantic search.
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a repository for semantic search",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "repository name (defaults to directory name)")
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-index all files regardless of changes")
}

func runIngest(cmd *cobra.Command, args []string) error {
	repoPath := args[0]

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

	pipeline := &ingest.Pipeline{Meta: meta, Vector: vectors}

	fmt.Printf("Indexing %s...\n", repoPath)
	summary, err := pipeline.IngestRepo(context.Background(), repoPath, ingestName, ingestForce, cfg.RepoOptions(repoPath), func(msg string) {
		fmt.Printf("  %s\n", msg)
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", repoPath, err)
	}

	fmt.Println()
	fmt.Printf("Done! +%d added, ~%d modified, -%d deleted\n", summary.Added, summary.Modified, summary.Deleted)
	fmt.Printf("  %d chunks indexed, %d files skipped\n", summary.Chunks, summary.Skipped)
	return nil
}
