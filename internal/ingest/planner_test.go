package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
)

func plannerCard(entries ...catalogs.PriceEntry) *catalogs.Card {
	return &catalogs.Card{
		DocID:    primitive.NewObjectID(),
		Name:     catalogs.Name{JA: "青眼の白龍"},
		KonamiID: 4007,
		Prices: catalogs.CardPrices{
			catalogs.MarketBigweb: entries,
		},
	}
}

func TestPlanReplacesChangedPrice(t *testing.T) {
	card := plannerCard(catalogs.PriceEntry{
		ID: 5, Price: 1000, Rarity: "Ultra Rare", SetNumber: "SM-51",
		Status: catalogs.StatusForSale,
	})
	p := NewPlanner(catalogs.MarketBigweb)

	intent := p.Plan(card, catalogs.PriceEntry{
		ID: 5, Price: 1200, Name: "青眼の白龍", Comment: "初期版",
		Rarity: "Ultra Rare", SetNumber: "SM-51",
		Status: catalogs.StatusForSale, LastModified: 42,
	})

	replace, ok := intent.(store.ReplaceEntry)
	require.True(t, ok)
	assert.Equal(t, card.DocID, replace.DocID)
	assert.Equal(t, catalogs.MarketBigweb, replace.Market)
	assert.Equal(t, 1200, replace.Entry.Price)
	// Transient fields never reach the catalog.
	assert.Empty(t, replace.Entry.Name)
	assert.Empty(t, replace.Entry.Comment)
}

func TestPlanPatchesStatusOnly(t *testing.T) {
	card := plannerCard(catalogs.PriceEntry{
		ID: 5, Price: 1000, SetNumber: "SM-51",
		Status: catalogs.StatusForSale,
	})
	p := NewPlanner(catalogs.MarketBigweb)

	intent := p.Plan(card, catalogs.PriceEntry{
		ID: 5, Price: 1000, Name: "青眼の白龍", SetNumber: "SM-51",
		Status: catalogs.StatusSoldOut, LastModified: 42,
	})

	patch, ok := intent.(store.PatchEntryStatus)
	require.True(t, ok)
	assert.Equal(t, 5, patch.EntryID)
	assert.Equal(t, catalogs.StatusSoldOut, patch.Status)
	assert.Equal(t, int64(42), patch.LastModified)
}

func TestPlanZeroPriceStatusFlipStillPatches(t *testing.T) {
	// A sold-out listing often hides its price; the status change must land
	// regardless.
	card := plannerCard(catalogs.PriceEntry{
		ID: 5, Price: 1000, SetNumber: "SM-51",
		Status: catalogs.StatusForSale,
	})
	p := NewPlanner(catalogs.MarketBigweb)

	intent := p.Plan(card, catalogs.PriceEntry{
		ID: 5, Price: 0, SetNumber: "SM-51",
		Status: catalogs.StatusSoldOut, LastModified: 42,
	})

	_, ok := intent.(store.PatchEntryStatus)
	assert.True(t, ok)
}

func TestPlanAppendsNewEntry(t *testing.T) {
	card := plannerCard()
	p := NewPlanner(catalogs.MarketBigweb)

	intent := p.Plan(card, catalogs.PriceEntry{
		ID: 7, Price: 300, Name: "青眼の白龍", SetNumber: "SM-51",
		Status: catalogs.StatusForSale,
	})

	appendIntent, ok := intent.(store.AppendEntry)
	require.True(t, ok)
	assert.Equal(t, 7, appendIntent.Entry.ID)
	assert.Empty(t, appendIntent.Entry.Name)
}

func TestPlanNoOps(t *testing.T) {
	existing := catalogs.PriceEntry{
		ID: 5, Price: 1000, SetNumber: "SM-51",
		Status: catalogs.StatusForSale,
	}
	p := NewPlanner(catalogs.MarketBigweb)

	tests := []struct {
		name  string
		entry catalogs.PriceEntry
	}{
		{
			name: "unchanged observation",
			entry: catalogs.PriceEntry{
				ID: 5, Price: 1000, SetNumber: "SM-51",
				Status: catalogs.StatusForSale,
			},
		},
		{
			name: "new entry with zero price",
			entry: catalogs.PriceEntry{
				ID: 9, Price: 0, SetNumber: "SM-51",
				Status: catalogs.StatusForSale,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := plannerCard(existing)
			assert.Nil(t, p.Plan(card, tt.entry))
		})
	}
}
