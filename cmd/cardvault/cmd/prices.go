package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sobani/cardvault/internal/config"
	"github.com/sobani/cardvault/internal/fetch"
	"github.com/sobani/cardvault/internal/ingest"
	"github.com/sobani/cardvault/internal/sources"
	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

var (
	pricesBigweb    bool
	pricesYuyutei   bool
	pricesTCGCorner bool
	pricesAll       bool
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Upsert card prices from the selected markets",
	Long: `Runs one concurrent ingestion task per market variant. Yuyutei runs
twice, as independent tasks: the default stock search and the damaged-stock
(kizu) search. Each task loads its own catalog snapshot, reconciles the
scraped observations, and commits one unordered batch.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPrices(cmd.Context())
	},
}

func init() {
	pricesCmd.Flags().BoolVar(&pricesBigweb, "bigweb", false, "scrape Bigweb")
	pricesCmd.Flags().BoolVar(&pricesYuyutei, "yuyutei", false, "scrape Yuyutei (both variants)")
	pricesCmd.Flags().BoolVar(&pricesTCGCorner, "tcg-corner", false, "scrape TCG Corner")
	pricesCmd.Flags().BoolVar(&pricesAll, "all", false, "scrape every market")
}

func runPrices(ctx context.Context) error {
	if !pricesAll && !pricesBigweb && !pricesYuyutei && !pricesTCGCorner {
		return errors.New("select at least one market (or --all)")
	}

	cfg, st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logging.Err(err).Msg("store disconnect failed")
		}
	}()

	tasks, err := priceTasks(cfg, st)
	if err != nil {
		return err
	}

	ingest.NewOrchestrator().Run(ctx, tasks)
	return nil
}

// priceTasks builds one task per selected (market, variant) pair.
func priceTasks(cfg *config.Config, st store.Store) ([]ingest.Task, error) {
	fetcher := fetch.New(nil)
	var tasks []ingest.Task

	if pricesAll || pricesBigweb {
		alias, err := sources.LoadRarityAlias(cfg.RarityAliasPath)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, ingest.Task{
			Source:  sources.NewBigweb(fetcher, cfg.UserAgent, cfg.BigwebCookie, alias),
			Updater: ingest.NewPriceUpdater(st, catalogs.MarketBigweb),
		})
	}

	if pricesAll || pricesYuyutei {
		tasks = append(tasks,
			ingest.Task{
				Source:  sources.NewYuyutei(fetcher, cfg.UserAgent, cfg.YuyuteiCookie, ""),
				Updater: ingest.NewPriceUpdater(st, catalogs.MarketYuyutei),
			},
			ingest.Task{
				Source:  sources.NewYuyutei(fetcher, cfg.UserAgent, cfg.YuyuteiCookie, sources.KizuVariant),
				Updater: ingest.NewPriceUpdater(st, catalogs.MarketYuyutei),
			},
		)
	}

	if pricesAll || pricesTCGCorner {
		tasks = append(tasks, ingest.Task{
			Source:  sources.NewTCGCorner(fetcher, cfg.UserAgent, cfg.TCGCornerCookie),
			Updater: ingest.NewPriceUpdater(st, catalogs.MarketTCGCorner),
		})
	}

	return tasks, nil
}
