// Package cli provides the command-line interface for mapmem.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapmem/mapmem-go/internal/catalog"
	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/db"
	"github.com/mapmem/mapmem-go/internal/memory"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	namespace string

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mapmemctl",
	Short: "Operate the column-mapping memory engine",
	Long: `Mapmemctl inspects and maintains the mapping memory engine: the episodes
it has learned, the reflections consolidated from them, and the runtime
counters of a live store.

The MCP server (mapmem) is the read/write surface agents use; this tool is
for operators.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if namespace == "" {
			namespace = cfg.DefaultNamespace
		}

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		dbClient, err = db.NewClient(ctx, dbCfg, quietLogger())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// quietLogger keeps connection chatter off the terminal unless -v is set.
func quietLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newConsolidator builds a consolidator against the connected store.
func newConsolidator() *memory.Consolidator {
	return memory.NewConsolidator(dbClient, cfg.MinSupport, quietLogger())
}

// newCatalog returns the schema catalog client, or nil when none is
// configured.
func newCatalog() catalog.Catalog {
	if cfg.CatalogURL == "" {
		return nil
	}
	timeout, err := time.ParseDuration(cfg.CatalogTimeout)
	if err != nil {
		timeout = 0
	}
	return catalog.NewHTTP(cfg.CatalogURL, timeout)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "memory namespace (defaults to the configured one)")

	// Add subcommands
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(reflectionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
