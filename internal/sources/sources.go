// Package sources defines the source collaborator contracts: per-market
// price scrapers and card metadata scrapers. Pagination, per-page politeness
// delays, and HTML/JSON parsing are entirely internal to each source; the
// pipeline only sees finite sequences of observations.
package sources

import (
	"context"

	"github.com/sobani/cardvault/pkg/catalogs"
)

// PriceSource produces price observations for one market variant. A source
// returns whatever it collected before a failure; total failure yields an
// empty sequence, not an error. Errors are reserved for cancellation.
type PriceSource interface {
	// Market identifies the pricing source.
	Market() catalogs.Market

	// Variant distinguishes multiple scrape configurations of one market
	// (e.g. Yuyutei's damaged-stock search). Empty for the default variant.
	Variant() string

	// Scrape fetches and parses all pages of the source.
	Scrape(ctx context.Context) ([]catalogs.PriceEntry, error)
}

// CardSource produces canonical card metadata records.
type CardSource interface {
	// Name identifies the metadata source.
	Name() string

	// Scrape fetches and parses the source's card records.
	Scrape(ctx context.Context) ([]catalogs.Card, error)
}
