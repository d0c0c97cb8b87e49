// Package constants provides shared constants used throughout the cardvault codebase.
// This includes retry bounds, timeouts, politeness delays, and other configuration
// values that should be consistent across the application.
package constants

import "time"

// Retry constants govern the bounded-retry fetcher.
const (
	// FetchAttempts is the number of attempts before a retrieval is given up.
	FetchAttempts = 10

	// FetchRetryWait is the fixed wait between retrieval attempts.
	FetchRetryWait = 10 * time.Second

	// DefaultHTTPTimeout is the per-request timeout for source HTTP calls.
	DefaultHTTPTimeout = 30 * time.Second
)

// Politeness delays between paginated requests to third-party sites.
// These are a courtesy to the sites, not a throughput control, and must be
// real wall-clock waits.
const (
	// BigwebPageDelayMin and BigwebPageDelayMax bound the delay between
	// Bigweb API pages.
	BigwebPageDelayMin = 5 * time.Second
	BigwebPageDelayMax = 6 * time.Second

	// YuyuteiPageDelayMin and YuyuteiPageDelayMax bound the delay between
	// Yuyutei listing pages. Yuyutei prohibits scraping on their site, so
	// requests are limited to one every 20 to 25 seconds.
	YuyuteiPageDelayMin = 20 * time.Second
	YuyuteiPageDelayMax = 25 * time.Second

	// TCGCornerPageDelayMin and TCGCornerPageDelayMax bound the delay
	// between TCG Corner collection pages.
	TCGCornerPageDelayMin = 20 * time.Second
	TCGCornerPageDelayMax = 25 * time.Second

	// TCGCornerDetailDelayMin and TCGCornerDetailDelayMax bound the delay
	// before a product detail request issued for rarity lookup.
	TCGCornerDetailDelayMin = 10 * time.Second
	TCGCornerDetailDelayMax = 15 * time.Second

	// YugipediaQueryDelay is the pause between consecutive ask-API queries.
	YugipediaQueryDelay = 2 * time.Second
)

// Store constants.
const (
	// StoreConnectTimeout is the timeout for the initial server ping.
	StoreConnectTimeout = 15 * time.Second

	// NameSearchIndex is the Atlas Search index used for fuzzy name lookup.
	NameSearchIndex = "name_search"

	// NameSearchMaxEdits is the edit-distance tolerance of the name search.
	NameSearchMaxEdits = 1
)
