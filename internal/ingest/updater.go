package ingest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/logging"
)

// PriceUpdater is the per-task price reconciliation pipeline: load a catalog
// snapshot, match each observation, plan the minimal mutation, and commit
// everything as one batch. One updater serves exactly one ingestion task;
// its snapshot is immutable and may be stale relative to concurrent tasks,
// which at worst re-derives a redundant no-op.
type PriceUpdater struct {
	store  store.Store
	mctx   catalogs.MarketContext
	logger zerolog.Logger
}

// NewPriceUpdater creates an updater for one market.
func NewPriceUpdater(st store.Store, market catalogs.Market) *PriceUpdater {
	return &PriceUpdater{
		store: st,
		mctx:  catalogs.ContextFor(market),
		logger: logging.Component("price_updater").With().
			Str("market", market.String()).Logger(),
	}
}

// Run reconciles the observations against the catalog and commits the
// resulting batch. Malformed observations are logged and skipped; matcher
// rejections and no-matches emit nothing.
//
// Cancellation stops the scrape upstream at a page boundary; observations
// already in hand are still reconciled and committed, never discarded.
func (u *PriceUpdater) Run(ctx context.Context, entries []catalogs.PriceEntry) error {
	if len(entries) == 0 {
		u.logger.Debug().Msg("no observations collected")
		return nil
	}

	ctx = context.WithoutCancel(ctx)

	snapshot, err := u.store.Snapshot(ctx)
	if err != nil {
		return err
	}

	matcher := NewMatcher(u.store, snapshot, u.mctx)
	planner := NewPlanner(u.mctx.Market)
	batch := NewBatch()

	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			u.logger.Warn().
				Err(err).
				Int("id", entry.ID).
				Str("set_number", entry.SetNumber).
				Msg("malformed observation skipped")
			continue
		}

		result := matcher.Match(ctx, entry)
		switch result.Kind {
		case NoMatch:
			continue
		case Rejected:
			u.logger.Debug().
				Str("reason", result.Reason).
				Str("name", entry.Name).
				Str("set_number", entry.SetNumber).
				Msg("observation rejected by safety gate")
			continue
		case Matched:
			batch.Add(planner.Plan(result.Card, entry))
		}
	}

	u.logger.Info().
		Int("observations", len(entries)).
		Int("planned", batch.Len()).
		Msg("reconciliation planned")

	return NewCommitter(u.store).Commit(ctx, batch)
}
