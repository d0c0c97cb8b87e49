package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sobani/cardvault/internal/fetch"
	"github.com/sobani/cardvault/internal/ingest"
	"github.com/sobani/cardvault/internal/sources"
	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

var (
	cardsYAMLYugi  bool
	cardsYugipedia bool
	cardsAll       bool
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Upsert card metadata from YAML Yugi or Yugipedia",
	Long: `Runs the metadata merge pipeline. Sources run sequentially, YAML Yugi
first: Yugipedia records are partial (Asian-English set numbers, tokens,
counters, illegal cards) and should only fill gaps in cards YAML Yugi
already established.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCards(cmd.Context())
	},
}

func init() {
	cardsCmd.Flags().BoolVar(&cardsYAMLYugi, "yaml-yugi", false, "merge the YAML Yugi dump")
	cardsCmd.Flags().BoolVar(&cardsYugipedia, "yugipedia", false, "merge Yugipedia queries")
	cardsCmd.Flags().BoolVar(&cardsAll, "all", false, "merge every metadata source")
}

func runCards(ctx context.Context) error {
	if !cardsAll && !cardsYAMLYugi && !cardsYugipedia {
		return errors.New("select at least one metadata source (or --all)")
	}

	_, st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logging.Err(err).Msg("store disconnect failed")
		}
	}()

	return mergeCards(ctx, st, cardsAll || cardsYAMLYugi, cardsAll || cardsYugipedia)
}

// mergeCards scrapes the selected metadata sources in order and commits one
// merge batch.
func mergeCards(ctx context.Context, st store.Store, yamlYugi, yugipedia bool) error {
	fetcher := fetch.New(nil)
	merger := ingest.NewMerger(st)

	var srcs []sources.CardSource
	if yamlYugi {
		srcs = append(srcs, sources.NewYAMLYugi(fetcher))
	}
	if yugipedia {
		srcs = append(srcs, sources.NewYugipedia(fetcher))
	}

	for _, src := range srcs {
		cards, err := src.Scrape(ctx)
		if err != nil {
			if errors.IsCanceled(err) {
				break
			}
			logging.Warn().Err(err).Str("source", src.Name()).Msg("metadata source failed")
			continue
		}
		logging.Info().Str("source", src.Name()).Int("cards", len(cards)).Msg("metadata scraped")
		merger.Add(cards)
	}

	return merger.Execute(ctx)
}
