package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/differ"
	"github.com/dkazen/meridian/internal/merkle"
	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/ui"
	"github.com/dkazen/meridian/internal/walker"
)

var statusRepo string

// statusCmd shows what changed since a repository's last ingest.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what changed since last index",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusRepo, "repo", "r", "", "repository name (shows all if omitted)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	meta, err := metastore.Open(cfg.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	var repos []metastore.Repository
	if statusRepo != "" {
		repo, err := meta.GetRepositoryByName(statusRepo)
		if err != nil {
			return fmt.Errorf("look up repository %q: %w", statusRepo, err)
		}
		if repo == nil {
			fmt.Fprintf(os.Stderr, "Repository '%s' not found.\n", statusRepo)
			os.Exit(1)
		}
		repos = []metastore.Repository{*repo}
	} else {
		repos, err = meta.ListRepositories()
		if err != nil {
			return fmt.Errorf("list repositories: %w", err)
		}
	}

	if len(repos) == 0 {
		fmt.Println("No repositories indexed.")
		return nil
	}

	for _, repo := range repos {
		fmt.Printf("%s (%s):\n", repo.Name, repo.Path)

		if _, err := os.Stat(repo.Path); os.IsNotExist(err) {
			fmt.Println(ui.Warning.Render("  Repository path no longer exists!"))
			continue
		}

		opts := cfg.RepoOptions(repo.Path)
		walkResult, err := walker.Walk(repo.Path, walker.Options{
			TokenTarget:      opts.TokenTarget,
			ChunkThreshold:   opts.ChunkThreshold,
			MaxFileSizeBytes: opts.MaxFileSizeBytes,
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", repo.Path, err)
		}

		fileHashes := make(map[string]string, len(walkResult.Files))
		for _, f := range walkResult.Files {
			h, err := hashFileForStatus(f.AbsPath)
			if err != nil {
				continue
			}
			fileHashes[f.RelPath] = h
		}

		storedNodes, err := meta.GetMerkleNodes(repo.ID)
		if err != nil {
			return fmt.Errorf("list stored merkle nodes for %q: %w", repo.Name, err)
		}
		stored := make(map[string]string, len(storedNodes))
		for _, n := range storedNodes {
			if !n.IsDirectory {
				stored[n.NodePath] = n.NodeHash
			}
		}

		changeset := differ.Compute(stored, fileHashes)

		if !changeset.HasChanges() {
			fmt.Println("  Up to date")
		} else {
			printStatusGroup("added", "+", changeset.Added)
			printStatusGroup("modified", "~", changeset.Modified)
			printStatusGroup("deleted", "-", changeset.Deleted)
		}
		fmt.Println()
	}

	return nil
}

func printStatusGroup(label, marker string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Printf("  %s%d %s\n", marker, len(paths), label)
	for i, p := range paths {
		if i >= 10 {
			fmt.Printf("    ... and %d more\n", len(paths)-10)
			break
		}
		fmt.Printf("    %s %s\n", marker, p)
	}
}

func hashFileForStatus(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer f.Close()
	return merkle.HashBytes(f)
}
