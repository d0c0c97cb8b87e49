package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sobani/cardvault/internal/ingest"
	"github.com/sobani/cardvault/pkg/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upsert card metadata, then prices, from every source",
	Long: `Full initialization run: merges every metadata source first so new
cards exist before price observations try to match them, then runs every
price ingestion task concurrently.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd.Context())
	},
}

func runSync(ctx context.Context) error {
	cfg, st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logging.Err(err).Msg("store disconnect failed")
		}
	}()

	if err := mergeCards(ctx, st, true, true); err != nil {
		return err
	}

	pricesAll = true
	tasks, err := priceTasks(cfg, st)
	if err != nil {
		return err
	}

	ingest.NewOrchestrator().Run(ctx, tasks)
	return nil
}
