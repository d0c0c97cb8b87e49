// Package store defines the catalog store boundary: snapshot loading, the
// fuzzy name search capability, and the unordered bulk application of
// conditional mutation intents. The catalog collection is the single source
// of truth; ingestion tasks read it once at task start and write it only
// through one BulkWrite at task end.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sobani/cardvault/pkg/catalogs"
)

// Store is the catalog persistence boundary.
type Store interface {
	// Snapshot loads the entire catalog into memory. The returned cards are
	// owned by the caller and may be stale relative to concurrent writers.
	Snapshot(ctx context.Context) ([]*catalogs.Card, error)

	// SearchByName performs a fuzzy full-text search against the canonical
	// name field for the given locale, tolerant of one character edit.
	// Returns the top-ranked card, or ErrNotFound when the index yields
	// nothing.
	SearchByName(ctx context.Context, locale catalogs.Locale, query string) (*catalogs.Card, error)

	// FindSentinel returns the generic token placeholder card
	// (konami_id == 0), or ErrNotFound when the catalog has none.
	FindSentinel(ctx context.Context) (*catalogs.Card, error)

	// BulkWrite applies the intents as one unordered batch. Partial failure
	// of individual intents does not abort the batch.
	BulkWrite(ctx context.Context, intents []Intent) (*BulkResult, error)

	// EnsurePriceFields lazily initializes the card_prices field to empty
	// per-market lists on every card that lacks one.
	EnsurePriceFields(ctx context.Context) error
}

// BulkResult summarizes one bulk application.
type BulkResult struct {
	Matched  int64
	Modified int64
	Upserted int64
}

// Intent is one conditional mutation addressed by a unique filter. Intents
// from concurrent tasks on different markets never touch the same
// sub-document, so they commute; within one task the batch is applied
// unordered.
type Intent interface {
	intent()
}

// ReplaceEntry replaces the whole price entry with the given id on a card's
// market list, if it is still present. Entry must already be stripped of
// transient fields.
type ReplaceEntry struct {
	DocID  primitive.ObjectID
	Market catalogs.Market
	Entry  catalogs.PriceEntry
}

func (ReplaceEntry) intent() {}

// PatchEntryStatus patches only the status and last_modified of the entry
// with the given id, leaving price, rarity, and set_number untouched.
type PatchEntryStatus struct {
	DocID        primitive.ObjectID
	Market       catalogs.Market
	EntryID      int
	Status       catalogs.Status
	LastModified int64
}

func (PatchEntryStatus) intent() {}

// AppendEntry appends a new entry to a card's market list, unless an entry
// with the same id is already present: two appends for one id planned
// against the same stale snapshot must land exactly once. Entry must
// already be stripped of transient fields.
type AppendEntry struct {
	DocID  primitive.ObjectID
	Market catalogs.Market
	Entry  catalogs.PriceEntry
}

func (AppendEntry) intent() {}

// UpsertCard upserts canonical metadata. Cards with a positive konami_id are
// addressed by it and fully refreshed; cards without one are addressed by
// English name with insert-only semantics, so two placeholder cards never
// overwrite each other. Set lists are merged via per-locale set union.
type UpsertCard struct {
	Card catalogs.Card
}

func (UpsertCard) intent() {}
