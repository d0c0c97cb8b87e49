package store

import (
	"context"
	"sync"

	"github.com/agnivade/levenshtein"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/constants"
	"github.com/sobani/cardvault/pkg/errors"
)

// Memory is an in-memory Store with the same conditional-mutation semantics
// as the Mongo implementation. It backs tests and offline runs; its name
// search approximates the Atlas fuzzy index with an edit-distance scan.
type Memory struct {
	mu    sync.RWMutex
	cards []*catalogs.Card
}

var _ Store = (*Memory)(nil)

// NewMemory creates a memory store seeded with the given cards. Cards
// without a document id are assigned one; seeds are cloned in.
func NewMemory(seed ...*catalogs.Card) *Memory {
	m := &Memory{}
	for _, card := range seed {
		clone := card.Clone()
		if clone.DocID.IsZero() {
			clone.DocID = primitive.NewObjectID()
		}
		m.cards = append(m.cards, clone)
	}
	return m
}

// Snapshot returns deep copies of every card in insertion order.
func (m *Memory) Snapshot(_ context.Context) ([]*catalogs.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]*catalogs.Card, 0, len(m.cards))
	for _, card := range m.cards {
		snapshot = append(snapshot, card.Clone())
	}
	return snapshot, nil
}

// SearchByName scans names in the locale and returns the closest card within
// the edit-distance tolerance, first-in-order on ties.
func (m *Memory) SearchByName(_ context.Context, locale catalogs.Locale, query string) (*catalogs.Card, error) {
	if query == "" {
		return nil, errors.NewNotFoundError("card", query)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *catalogs.Card
	bestDist := constants.NameSearchMaxEdits + 1

	for _, card := range m.cards {
		name := card.Name.ForLocale(locale)
		if name == "" {
			continue
		}
		if dist := levenshtein.ComputeDistance(name, query); dist < bestDist {
			best = card
			bestDist = dist
		}
	}

	if best == nil {
		return nil, errors.NewNotFoundError("card", query)
	}
	return best.Clone(), nil
}

// FindSentinel returns the generic token placeholder card.
func (m *Memory) FindSentinel(_ context.Context) (*catalogs.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, card := range m.cards {
		if card.IsSentinel() {
			return card.Clone(), nil
		}
	}
	return nil, errors.NewNotFoundError("card", "sentinel")
}

// BulkWrite applies each intent independently; an intent whose filter no
// longer matches is a silent no-op, mirroring unordered bulk semantics.
func (m *Memory) BulkWrite(_ context.Context, intents []Intent) (*BulkResult, error) {
	if len(intents) == 0 {
		return nil, errors.ErrEmptyBatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := &BulkResult{}
	for _, intent := range intents {
		m.apply(intent, result)
	}
	return result, nil
}

// EnsurePriceFields initializes card_prices on cards that lack the field.
func (m *Memory) EnsurePriceFields(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, card := range m.cards {
		if card.Prices == nil {
			card.Prices = catalogs.NewCardPrices()
		}
	}
	return nil
}

func (m *Memory) apply(intent Intent, result *BulkResult) {
	switch it := intent.(type) {
	case ReplaceEntry:
		card := m.byDocID(it.DocID)
		if card == nil {
			return
		}
		for i, entry := range card.Prices[it.Market] {
			if entry.ID == it.Entry.ID {
				result.Matched++
				if entry != it.Entry {
					card.Prices[it.Market][i] = it.Entry
					result.Modified++
				}
				return
			}
		}

	case PatchEntryStatus:
		card := m.byDocID(it.DocID)
		if card == nil {
			return
		}
		for i, entry := range card.Prices[it.Market] {
			if entry.ID == it.EntryID {
				result.Matched++
				if entry.Status != it.Status || entry.LastModified != it.LastModified {
					card.Prices[it.Market][i].Status = it.Status
					card.Prices[it.Market][i].LastModified = it.LastModified
					result.Modified++
				}
				return
			}
		}

	case AppendEntry:
		card := m.byDocID(it.DocID)
		if card == nil {
			return
		}
		if card.Prices == nil {
			card.Prices = catalogs.NewCardPrices()
		}
		// Insert-if-absent: a duplicate id is a silent no-op.
		for _, entry := range card.Prices[it.Market] {
			if entry.ID == it.Entry.ID {
				return
			}
		}
		card.Prices[it.Market] = append(card.Prices[it.Market], it.Entry)
		result.Matched++
		result.Modified++

	case UpsertCard:
		m.upsertCard(it.Card, result)
	}
}

func (m *Memory) upsertCard(incoming catalogs.Card, result *BulkResult) {
	existing := m.findUpsertTarget(incoming)
	if existing == nil {
		card := incoming.Clone()
		card.DocID = primitive.NewObjectID()
		card.Sets.JA = catalogs.DedupeSets(card.Sets.JA)
		card.Sets.AE = catalogs.DedupeSets(card.Sets.AE)
		m.cards = append(m.cards, card)
		result.Upserted++
		return
	}

	result.Matched++
	if incoming.Identified() {
		// Trusted identifier implies trusted metadata refresh.
		existing.Name = incoming.Name
		existing.KonamiID = incoming.KonamiID
		existing.Password = incoming.Password
	}
	existing.Sets.JA = unionSets(existing.Sets.JA, incoming.Sets.JA)
	existing.Sets.AE = unionSets(existing.Sets.AE, incoming.Sets.AE)
	result.Modified++
}

func (m *Memory) findUpsertTarget(incoming catalogs.Card) *catalogs.Card {
	for _, card := range m.cards {
		if incoming.Identified() {
			if card.KonamiID == incoming.KonamiID {
				return card
			}
		} else if card.Name.EN == incoming.Name.EN {
			return card
		}
	}
	return nil
}

func (m *Memory) byDocID(id primitive.ObjectID) *catalogs.Card {
	for _, card := range m.cards {
		if card.DocID == id {
			return card
		}
	}
	return nil
}

// unionSets merges incoming set refs into existing, keeping existing order
// and skipping duplicates and blanks.
func unionSets(existing, incoming []catalogs.SetRef) []catalogs.SetRef {
	merged := make([]catalogs.SetRef, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	return catalogs.DedupeSets(merged)
}
