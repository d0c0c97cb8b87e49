// Package cmd implements the cardvault CLI commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sobani/cardvault/internal/config"
	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cardvault",
	Short: "Card catalog price and metadata ingestion",
	Long: `Cardvault ingests pricing and metadata records for trading-card items
from multiple independent sources and reconciles them into one canonical,
deduplicated catalog record per physical card.

Price sources (Bigweb, Yuyutei, TCG Corner) run as concurrent ingestion
tasks; metadata sources (YAML Yugi, Yugipedia) run as a separate sequential
pipeline. Convergence happens over repeated runs.`,
	SilenceUsage: true,
}

// Execute runs the root command with signal-driven cancellation. SIGINT and
// SIGTERM cancel the shared context; running tasks stop at their next page
// boundary and whatever was collected is still committed.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(syncCmd)
}

// openStore loads configuration and connects to the catalog store.
func openStore(ctx context.Context) (*config.Config, *store.Mongo, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, nil, err
	}

	st, err := store.NewMongo(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
	if err != nil {
		return nil, nil, err
	}

	logging.Info().
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("connected to catalog store")
	return cfg, st, nil
}
