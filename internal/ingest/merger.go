package ingest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/jptext"
	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/logging"
)

// Merger upserts canonical card metadata from metadata sources. It runs as
// its own pipeline, independent of the price sources.
//
// Records with a positive konami_id are trusted and fully refresh the
// matched card's metadata; records without one (tokens, placeholders) are
// insert-only so two different placeholder cards never overwrite each
// other's data. Set lists are always merged via per-locale set union.
type Merger struct {
	store  store.Store
	batch  *Batch
	logger zerolog.Logger
}

// NewMerger creates a metadata merger over the store.
func NewMerger(st store.Store) *Merger {
	return &Merger{
		store:  st,
		batch:  NewBatch(),
		logger: logging.Component("card_merger"),
	}
}

// Add normalizes and queues card records for upsert. Malformed records are
// logged and skipped; they never abort the batch.
func (m *Merger) Add(cards []catalogs.Card) {
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			m.logger.Warn().
				Err(err).
				Int("konami_id", card.KonamiID).
				Str("name", card.Name.EN).
				Msg("malformed card record skipped")
			continue
		}

		// Display names are stored width-folded so shop listings and
		// catalog names compare equal.
		card.Name.JA = jptext.HalfToFull(card.Name.JA)
		card.Sets.JA = catalogs.DedupeSets(card.Sets.JA)
		card.Sets.AE = catalogs.DedupeSets(card.Sets.AE)
		card.Prices = nil

		m.batch.Add(store.UpsertCard{Card: card})
	}
}

// Execute commits the queued upserts, then lazily initializes the
// card_prices field on any newly created cards.
func (m *Merger) Execute(ctx context.Context) error {
	if m.batch.Len() == 0 {
		m.logger.Debug().Msg("there are no operations to complete")
		return nil
	}

	if err := NewCommitter(m.store).Commit(ctx, m.batch); err != nil {
		return err
	}

	return m.store.EnsurePriceFields(ctx)
}
