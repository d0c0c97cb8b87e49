package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeSets(t *testing.T) {
	tests := []struct {
		name string
		in   []SetRef
		want []SetRef
	}{
		{
			name: "removes duplicates keeping first-seen order",
			in:   []SetRef{{"ABC-001"}, {"DEF-002"}, {"ABC-001"}},
			want: []SetRef{{"ABC-001"}, {"DEF-002"}},
		},
		{
			name: "drops blank set numbers",
			in:   []SetRef{{""}, {" "}, {"ABC-001"}},
			want: []SetRef{{"ABC-001"}},
		},
		{
			name: "empty input",
			in:   nil,
			want: []SetRef{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeSets(tt.in))
		})
	}
}

func TestCardValidate(t *testing.T) {
	identified := &Card{KonamiID: 4007, Name: Name{EN: "Blue-Eyes White Dragon"}}
	assert.NoError(t, identified.Validate())

	namedOnly := &Card{KonamiID: -1, Name: Name{EN: "Token"}}
	assert.NoError(t, namedOnly.Validate())

	anonymous := &Card{KonamiID: -1}
	assert.Error(t, anonymous.Validate())
}

func TestCardSentinelAndIdentified(t *testing.T) {
	sentinel := &Card{KonamiID: SentinelKonamiID}
	assert.True(t, sentinel.IsSentinel())
	assert.False(t, sentinel.Identified())

	card := &Card{KonamiID: 100}
	assert.False(t, card.IsSentinel())
	assert.True(t, card.Identified())
}

func TestCardClone(t *testing.T) {
	card := &Card{
		Name:     Name{EN: "Sample Card", JA: "サンプルカード"},
		KonamiID: 123456,
		Sets:     Sets{JA: []SetRef{{"ABCD-123456"}}},
		Prices: CardPrices{
			MarketBigweb: []PriceEntry{{ID: 5, Price: 1000}},
		},
	}

	clone := card.Clone()
	require.Equal(t, card, clone)

	clone.Sets.JA[0].SetNumber = "changed"
	clone.Prices[MarketBigweb][0].Price = 9999
	assert.Equal(t, "ABCD-123456", card.Sets.JA[0].SetNumber)
	assert.Equal(t, 1000, card.Prices[MarketBigweb][0].Price)
}

func TestNewCardPrices(t *testing.T) {
	prices := NewCardPrices()
	require.Len(t, prices, len(Markets()))
	for _, m := range Markets() {
		entries, ok := prices[m]
		assert.True(t, ok, "market %s missing", m)
		assert.Empty(t, entries)
	}
}

func TestCardPricesEntry(t *testing.T) {
	prices := CardPrices{
		MarketBigweb: []PriceEntry{{ID: 5, Price: 1000}, {ID: 7, Price: 300}},
	}

	entry := prices.Entry(MarketBigweb, 7)
	require.NotNil(t, entry)
	assert.Equal(t, 300, entry.Price)

	assert.Nil(t, prices.Entry(MarketBigweb, 8))
	assert.Nil(t, prices.Entry(MarketYuyutei, 5))
}

func TestPriceEntryStripped(t *testing.T) {
	entry := PriceEntry{
		ID:      5,
		Price:   1000,
		Name:    "青眼の白龍",
		Comment: "傷あり",
		Rarity:  "Ultra Rare",
	}

	stripped := entry.Stripped()
	assert.Empty(t, stripped.Name)
	assert.Empty(t, stripped.Comment)
	assert.Equal(t, 1000, stripped.Price)
	assert.Equal(t, "Ultra Rare", stripped.Rarity)
}

func TestPriceEntryValidate(t *testing.T) {
	valid := PriceEntry{ID: 5, Name: "青眼の白龍", SetNumber: "SM-51", Status: StatusForSale}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		entry PriceEntry
	}{
		{"missing id", PriceEntry{Name: "x", SetNumber: "SM-51", Status: StatusForSale}},
		{"missing name", PriceEntry{ID: 5, SetNumber: "SM-51", Status: StatusForSale}},
		{"missing set number", PriceEntry{ID: 5, Name: "x", Status: StatusForSale}},
		{"unknown status", PriceEntry{ID: 5, Name: "x", SetNumber: "SM-51", Status: "Reserved"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.entry.Validate())
		})
	}
}

func TestContextFor(t *testing.T) {
	bigweb := ContextFor(MarketBigweb)
	assert.Equal(t, LocaleJA, bigweb.NameLocale)
	assert.Equal(t, LocaleJA, bigweb.SetLocale)
	assert.True(t, bigweb.CheckSafe)
	assert.True(t, bigweb.CheckComment)

	yuyutei := ContextFor(MarketYuyutei)
	assert.True(t, yuyutei.CheckSafe)
	assert.False(t, yuyutei.CheckComment)

	tcg := ContextFor(MarketTCGCorner)
	assert.Equal(t, LocaleEN, tcg.NameLocale)
	assert.Equal(t, LocaleAE, tcg.SetLocale)
	assert.False(t, tcg.CheckSafe)
}
