package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
)

func TestMergerInsertsAndInitializesPrices(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	m := NewMerger(st)
	m.Add([]catalogs.Card{{
		Name:     catalogs.Name{EN: "Blue-Eyes White Dragon", JA: "青眼の白龍"},
		KonamiID: 4007,
		Sets:     catalogs.Sets{JA: []catalogs.SetRef{{SetNumber: "SM-51"}}},
	}})
	require.NoError(t, m.Execute(ctx))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 4007, snap[0].KonamiID)
	// Execute initializes the price field on fresh cards.
	require.NotNil(t, snap[0].Prices)
	assert.Contains(t, snap[0].Prices, catalogs.MarketBigweb)
}

func TestMergerIdentifiedRecordRefreshesMetadata(t *testing.T) {
	ctx := context.Background()
	seeded := &catalogs.Card{
		Name:     catalogs.Name{EN: "Blue-Eyes White Dragon"},
		KonamiID: 4007,
		Sets:     catalogs.Sets{JA: []catalogs.SetRef{{SetNumber: "SM-51"}}},
		Prices:   catalogs.NewCardPrices(),
	}
	st := store.NewMemory(seeded)

	m := NewMerger(st)
	m.Add([]catalogs.Card{{
		Name:     catalogs.Name{EN: "Blue-Eyes White Dragon", JA: "青眼の白龍"},
		KonamiID: 4007,
		Password: 89631139,
		Sets:     catalogs.Sets{JA: []catalogs.SetRef{{SetNumber: "LB-01"}}},
	}})
	require.NoError(t, m.Execute(ctx))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "青眼の白龍", snap[0].Name.JA)
	assert.Equal(t, 89631139, snap[0].Password)
	assert.Equal(t,
		[]catalogs.SetRef{{SetNumber: "SM-51"}, {SetNumber: "LB-01"}},
		snap[0].Sets.JA)
}

func TestMergerPlaceholderIsInsertOnly(t *testing.T) {
	ctx := context.Background()
	seeded := &catalogs.Card{
		Name:     catalogs.Name{EN: "Sheep Token", JA: "羊トークン"},
		KonamiID: -1,
		Prices:   catalogs.NewCardPrices(),
	}
	st := store.NewMemory(seeded)

	m := NewMerger(st)
	m.Add([]catalogs.Card{{
		Name:     catalogs.Name{EN: "Sheep Token", JA: "別の読み"},
		KonamiID: -1,
		Sets:     catalogs.Sets{JA: []catalogs.SetRef{{SetNumber: "TK-01"}}},
	}})
	require.NoError(t, m.Execute(ctx))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	// Metadata untouched; set lists still union in.
	assert.Equal(t, "羊トークン", snap[0].Name.JA)
	assert.Equal(t, []catalogs.SetRef{{SetNumber: "TK-01"}}, snap[0].Sets.JA)
}

func TestMergerNormalizesRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	m := NewMerger(st)
	m.Add([]catalogs.Card{{
		Name:     catalogs.Name{EN: "Utopia", JA: "No.39 希望皇ホープ"},
		KonamiID: 9596,
		Sets: catalogs.Sets{JA: []catalogs.SetRef{
			{SetNumber: "YS13-JP041"},
			{SetNumber: "YS13-JP041"},
			{SetNumber: ""},
		}},
	}})
	require.NoError(t, m.Execute(ctx))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "Ｎｏ．３９ 希望皇ホープ", snap[0].Name.JA)
	assert.Equal(t, []catalogs.SetRef{{SetNumber: "YS13-JP041"}}, snap[0].Sets.JA)
}

func TestMergerSkipsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	m := NewMerger(st)
	m.Add([]catalogs.Card{
		{KonamiID: -1}, // neither identifier nor name
		{Name: catalogs.Name{EN: "Dark Magician"}, KonamiID: 4041},
	})
	require.NoError(t, m.Execute(ctx))

	snap, err := st.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 4041, snap[0].KonamiID)
}

func TestMergerEmptyBatchIsNoOp(t *testing.T) {
	m := NewMerger(store.NewMemory())
	assert.NoError(t, m.Execute(context.Background()))
}
