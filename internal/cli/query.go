package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/ui"
	"github.com/dkazen/meridian/internal/vectorstore"
)

var (
	queryRepo     string
	queryLimit    int
	queryLanguage string
	queryRaw      bool
)

// queryCmd searches an indexed repository's chunks by natural-language text.
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search indexed code using natural language",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryRepo, "repo", "r", "", "repository name (searches the first indexed repo if omitted)")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "l", 10, "maximum number of results")
	queryCmd.Flags().StringVar(&queryLanguage, "language", "", "filter by programming language")
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "print chunk content without markdown rendering")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := args[0]

	meta, err := metastore.Open(cfg.MetadataDBPath())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer meta.Close()

	var repo *metastore.Repository
	if queryRepo != "" {
		repo, err = meta.GetRepositoryByName(queryRepo)
		if err != nil {
			return fmt.Errorf("look up repository %q: %w", queryRepo, err)
		}
		if repo == nil {
			fmt.Fprintln(os.Stderr, ui.Error.Render(fmt.Sprintf("Repository '%s' not found.", queryRepo)))
			os.Exit(1)
		}
	} else {
		repos, err := meta.ListRepositories()
		if err != nil {
			return fmt.Errorf("list repositories: %w", err)
		}
		if len(repos) == 0 {
			fmt.Println("No repositories indexed. Run 'meridian ingest <path>' first.")
			return nil
		}
		repo = &repos[0]
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

	fetchLimit := queryLimit
	if queryLanguage != "" {
		fetchLimit = queryLimit * 5
	}
	results, err := vectors.Query(context.Background(), repo.CollectionName, text, fetchLimit)
	if err != nil {
		return fmt.Errorf("query %q: %w", repo.CollectionName, err)
	}

	if queryLanguage != "" {
		filtered := results[:0]
		for _, r := range results {
			if r.Metadata["language"] == queryLanguage {
				filtered = append(filtered, r)
			}
			if len(filtered) >= queryLimit {
				break
			}
		}
		results = filtered
	} else if len(results) > queryLimit {
		results = results[:queryLimit]
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results in %s:\n\n", len(results), repo.Name)
	for i, r := range results {
		fmt.Printf("%s %s %s\n",
			ui.Citation.Render(fmt.Sprintf("[%d]", i+1)),
			ui.FormatFilePath(r.Metadata["file_path"], metaInt(r.Metadata["start_line"]), metaInt(r.Metadata["end_line"])),
			ui.FormatScore(matchScore(r.Distance)),
		)
		if sym := r.Metadata["symbol_name"]; sym != "" {
			fmt.Printf("    %s %s (%s)\n", ui.Italic.Render("symbol:"), ui.Code.Render(sym), r.Metadata["symbol_type"])
		}
		fmt.Println(renderChunk(r.Document, r.Metadata["language"]))
		fmt.Println(ui.SourceRef.Render(fmt.Sprintf("source: %s", repo.Name)))
		fmt.Println(ui.HorizontalRule(60))
	}

	return nil
}

// matchScore converts a cosine distance (0 = identical, larger = less
// similar) into the 0..1 similarity fraction FormatScore expects.
func matchScore(distance float32) float64 {
	score := 1 - float64(distance)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// renderChunk renders a chunk's content as a fenced code block through
// glamour for syntax-aware terminal output, falling back to the plain
// result style if rendering fails or --raw was passed.
func renderChunk(content, language string) string {
	if queryRaw {
		return ui.ResultContent.Render(content)
	}

	fence := fmt.Sprintf("```%s\n%s\n```", language, content)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return ui.ResultContent.Render(content)
	}
	rendered, err := renderer.Render(fence)
	if err != nil {
		return ui.ResultContent.Render(content)
	}
	return rendered
}

func metaInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
