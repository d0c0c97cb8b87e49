package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
)

// TestUpdaterLifecycle walks one listing through its whole life: first seen,
// re-seen unchanged, repriced, and finally sold out.
func TestUpdaterLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(jaCard("青眼の白龍", 4007, "SM-51"))
	u := NewPriceUpdater(st, catalogs.MarketYuyutei)

	observation := catalogs.PriceEntry{
		ID:        42,
		Price:     1000,
		Name:      "青眼の白龍",
		SetNumber: "SM-51",
		Rarity:    "Ultra Rare",
		Status:    catalogs.StatusForSale,
	}

	// First sighting appends.
	require.NoError(t, u.Run(ctx, []catalogs.PriceEntry{observation}))
	entry := marketEntry(t, st, catalogs.MarketYuyutei, 42)
	assert.Equal(t, 1000, entry.Price)
	assert.Empty(t, entry.Name)

	// Unchanged observation is a no-op; the entry is not duplicated.
	require.NoError(t, u.Run(ctx, []catalogs.PriceEntry{observation}))
	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap[0].Prices[catalogs.MarketYuyutei], 1)

	// A repriced observation replaces the entry wholesale.
	repriced := observation
	repriced.Price = 1200
	repriced.LastModified = 100
	require.NoError(t, u.Run(ctx, []catalogs.PriceEntry{repriced}))
	entry = marketEntry(t, st, catalogs.MarketYuyutei, 42)
	assert.Equal(t, 1200, entry.Price)

	// Sold out flips only status and last_modified.
	soldOut := repriced
	soldOut.Status = catalogs.StatusSoldOut
	soldOut.LastModified = 200
	require.NoError(t, u.Run(ctx, []catalogs.PriceEntry{soldOut}))
	entry = marketEntry(t, st, catalogs.MarketYuyutei, 42)
	assert.Equal(t, catalogs.StatusSoldOut, entry.Status)
	assert.Equal(t, int64(200), entry.LastModified)
	assert.Equal(t, 1200, entry.Price)
}

func TestUpdaterSkipsMalformedAndUnmatched(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(jaCard("青眼の白龍", 4007, "SM-51"))
	u := NewPriceUpdater(st, catalogs.MarketYuyutei)

	entries := []catalogs.PriceEntry{
		// Missing status fails validation.
		{ID: 1, Price: 500, Name: "青眼の白龍", SetNumber: "SM-51"},
		// Resolves to nothing.
		{ID: 2, Price: 500, Name: "未知のカード", SetNumber: "XX-999", Status: catalogs.StatusForSale},
		// The one good observation.
		{ID: 3, Price: 500, Name: "青眼の白龍", SetNumber: "SM-51", Rarity: "Ultra Rare", Status: catalogs.StatusForSale},
	}

	require.NoError(t, u.Run(ctx, entries))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	list := snap[0].Prices[catalogs.MarketYuyutei]
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].ID)
}

func TestUpdaterEmptyObservationsDoNothing(t *testing.T) {
	st := store.NewMemory(jaCard("青眼の白龍", 4007, "SM-51"))
	u := NewPriceUpdater(st, catalogs.MarketYuyutei)
	assert.NoError(t, u.Run(context.Background(), nil))
}

func TestUpdaterCommitsCollectedOnCancellation(t *testing.T) {
	// Cancellation stops scraping at a page boundary; whatever was already
	// collected is still reconciled and committed.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := store.NewMemory(jaCard("青眼の白龍", 4007, "SM-51"))
	u := NewPriceUpdater(st, catalogs.MarketYuyutei)

	err := u.Run(ctx, []catalogs.PriceEntry{{
		ID: 1, Price: 500, Name: "青眼の白龍", SetNumber: "SM-51",
		Rarity: "Ultra Rare", Status: catalogs.StatusForSale,
	}})
	require.NoError(t, err)

	entry := marketEntry(t, st, catalogs.MarketYuyutei, 1)
	assert.Equal(t, 500, entry.Price)
}

func TestUpdaterDuplicateObservationsLandOnce(t *testing.T) {
	// A pagination shift can surface the same listing twice in one run; both
	// observations plan appends against the same stale snapshot, but the
	// entry id stays unique in the market list.
	ctx := context.Background()
	st := store.NewMemory(jaCard("青眼の白龍", 4007, "SM-51"))
	u := NewPriceUpdater(st, catalogs.MarketYuyutei)

	observation := catalogs.PriceEntry{
		ID: 42, Price: 1000, Name: "青眼の白龍", SetNumber: "SM-51",
		Rarity: "Ultra Rare", Status: catalogs.StatusForSale, LastModified: 100,
	}
	reseen := observation
	reseen.LastModified = 200

	require.NoError(t, u.Run(ctx, []catalogs.PriceEntry{observation, reseen}))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	list := snap[0].Prices[catalogs.MarketYuyutei]
	require.Len(t, list, 1)
	assert.Equal(t, int64(100), list[0].LastModified)
}

func marketEntry(t *testing.T, st store.Store, market catalogs.Market, id int) catalogs.PriceEntry {
	t.Helper()
	snap, err := st.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, snap)
	entry := snap[0].Prices.Entry(market, id)
	require.NotNil(t, entry)
	return *entry
}
