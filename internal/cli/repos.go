package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/ui"
)

// reposCmd lists all indexed repositories.
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List all indexed repositories",
	RunE:  runRepos,
}

func runRepos(cmd *cobra.Command, args []string) error {
	meta, err := metastore.Open(cfg.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	repos, err := meta.ListRepositories()
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}

	if len(repos) == 0 {
		fmt.Println("No repositories indexed yet. Run 'meridian ingest <path>' to get started.")
		return nil
	}

	for _, repo := range repos {
		fileCount, err := meta.GetFileCount(repo.ID)
		if err != nil {
			return fmt.Errorf("count files for %q: %w", repo.Name, err)
		}
		ingested := "never"
		if repo.IngestedAt != nil {
			ingested = repo.IngestedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %s %6d files  %s\n",
			ui.Highlight.Render(fmt.Sprintf("%-30s", repo.Name)), fileCount,
			ui.Dim.Render(fmt.Sprintf("(last indexed: %s)", ingested)),
		)
		fmt.Printf("    path: %s\n", repo.Path)
	}

	return nil
}
