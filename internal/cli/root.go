// Package cli implements the command-line interface for meridian.
package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkazen/meridian/internal/config"
	"github.com/dkazen/meridian/internal/ui"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags.
	cfgFile string
	debug   bool

	// cfg is the configuration resolved by PersistentPreRunE, available to
	// every subcommand's RunE.
	cfg *config.Config
)

// SetVersionInfo sets the version information from build flags.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Local codebase indexer with semantic search",
	Long: `meridian indexes a codebase into local SQLite-backed stores — file
metadata and Merkle state in one database, embedded chunks in another —
and serves semantic search over it, either from the command line or as
a JSON-RPC tool server for AI agents.

Examples:
  # Initialize config and data directories
  meridian init

  # Index a repository
  meridian ingest ./myproject

  # Search it
  meridian query "how does authentication work" --repo myproject`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("debug logging enabled")
		}

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := loaded.EnsureDirs(); err != nil {
			return fmt.Errorf("ensure config/data directories: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	ui.InitLogger()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/meridian/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestFileCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.Bold.Render(fmt.Sprintf("meridian %s", version)))
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
