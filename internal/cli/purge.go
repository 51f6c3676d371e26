package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/vectorstore"
)

var purgeYes bool

// purgeCmd removes all indexed data for a repository.
var purgeCmd = &cobra.Command{
	Use:   "purge <name>",
	Short: "Purge a repository — removes all indexed data",
	Args:  cobra.ExactArgs(1),
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "skip confirmation prompt")
}

func runPurge(cmd *cobra.Command, args []string) error {
	name := args[0]

	meta, err := metastore.Open(cfg.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	repo, err := meta.GetRepositoryByName(name)
	if err != nil {
		return fmt.Errorf("look up repository %q: %w", name, err)
	}
	if repo == nil {
		fmt.Fprintf(os.Stderr, "Repository '%s' not found.\n", name)
		os.Exit(1)
	}

	fileCount, err := meta.GetFileCount(repo.ID)
	if err != nil {
		return fmt.Errorf("count files for %q: %w", name, err)
	}

	if !purgeYes {
		fmt.Printf("This will delete all indexed data for '%s' (%d files).\n", name, fileCount)
		fmt.Printf("  Vector collection: %s\n", repo.CollectionName)
		fmt.Println("  SQLite records: files, merkle nodes, repo entry")
		if !confirm("Proceed?") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	embedder, err := cfg.NewEmbedder()
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	vectors, err := vectorstore.Open(cfg.VectorDBPath(), embedder)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer vectors.Close()

	if err := vectors.DeleteCollection(context.Background(), repo.CollectionName); err != nil {
		return fmt.Errorf("delete collection %q: %w", repo.CollectionName, err)
	}
	fmt.Printf("Deleted vector collection '%s'\n", repo.CollectionName)

	if err := meta.DeleteRepository(repo.ID); err != nil {
		return fmt.Errorf("delete repository %q: %w", name, err)
	}
	fmt.Printf("Deleted SQLite records for '%s'\n", name)

	fmt.Printf("Purged '%s'. Run 'meridian ingest %s' to re-index.\n", name, repo.Path)
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}
