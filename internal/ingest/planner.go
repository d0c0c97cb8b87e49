package ingest

import (
	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/logging"
)

// Planner decides the minimal mutation for a matched card given an
// observation. Decisions are idempotent: re-planning an unchanged
// observation against an unchanged catalog yields nothing.
type Planner struct {
	market catalogs.Market
	logger zerolog.Logger
}

// NewPlanner creates a planner for one market.
func NewPlanner(market catalogs.Market) *Planner {
	return &Planner{
		market: market,
		logger: logging.Component("planner").With().
			Str("market", market.String()).Logger(),
	}
}

// Plan returns the mutation intent for the observation, or nil for a no-op.
//
// An existing entry with a changed non-zero price is replaced wholesale; an
// unchanged price with a flipped status gets a status+last_modified patch;
// an unseen entry with a non-zero price is appended. A zero price on an
// unseen entry is an incomplete observation and planned as nothing.
func (p *Planner) Plan(card *catalogs.Card, entry catalogs.PriceEntry) store.Intent {
	stripped := entry.Stripped()
	existing := card.Prices.Entry(p.market, stripped.ID)

	if existing != nil {
		if stripped.Price != 0 && stripped.Price != existing.Price {
			return store.ReplaceEntry{
				DocID:  card.DocID,
				Market: p.market,
				Entry:  stripped,
			}
		}
		if stripped.Status != existing.Status {
			return store.PatchEntryStatus{
				DocID:        card.DocID,
				Market:       p.market,
				EntryID:      stripped.ID,
				Status:       stripped.Status,
				LastModified: stripped.LastModified,
			}
		}
		return nil
	}

	if stripped.Price != 0 {
		return store.AppendEntry{
			DocID:  card.DocID,
			Market: p.market,
			Entry:  stripped,
		}
	}

	p.logger.Debug().
		Int("id", stripped.ID).
		Str("set_number", stripped.SetNumber).
		Msg("incomplete observation, nothing planned")
	return nil
}
