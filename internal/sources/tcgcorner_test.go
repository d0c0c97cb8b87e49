package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/sobani/cardvault/pkg/catalogs"
)

const tcgCornerItems = `
<div class="collection__item">
  <div class="product-card__meta-info">
    <a href="/products/lob-ae001">LOB-AE001 Blue-Eyes White Dragon (Ultra Rare)</a>
  </div>
  <span class="price-item--regular" data-product-price="1234">¥1,234</span>
</div>
<div class="collection__item">
  <div class="product-card__meta-info">
    <a href="/products/mrd-ae060">MRD-AE060 Mirror Force (Secret)</a>
  </div>
  <span class="price-item--regular" data-product-price="500">¥500</span>
  <ul><li class="product-card__label product-card__label--sold-out">Sold out</li></ul>
</div>
<div class="collection__item">
  <div class="product-card__meta-info">
    <a>Playmat</a>
  </div>
  <span class="price-item--regular" data-product-price="900">¥900</span>
</div>`

func tcgCornerParsed(t *testing.T) (*TCGCorner, []*html.Node) {
	t.Helper()
	doc, err := parseHTML([]byte(tcgCornerItems))
	require.NoError(t, err)

	items := findAll(doc, element("div", "collection__item"))
	require.Len(t, items, 3)

	return NewTCGCorner(testFetcher(&stubDoer{}), "cardvault-test", ""), items
}

func TestTCGCornerParseItem(t *testing.T) {
	src, items := tcgCornerParsed(t)

	entry, err := src.parseItem(context.Background(), items[0])
	require.NoError(t, err)
	assert.Equal(t, "LOB-AE001 Blue-Eyes White Dragon (Ultra Rare)", entry.Name)
	assert.Equal(t, "LOB-AE001", entry.SetNumber)
	assert.Equal(t, "Ultra Rare", entry.Rarity)
	assert.Equal(t, 1234, entry.Price)
	assert.Equal(t, catalogs.ConditionGood, entry.Condition)
	assert.Equal(t, catalogs.StatusForSale, entry.Status)
	assert.NotZero(t, entry.ID)
}

func TestTCGCornerParseItemSoldOut(t *testing.T) {
	src, items := tcgCornerParsed(t)

	entry, err := src.parseItem(context.Background(), items[1])
	require.NoError(t, err)
	assert.Equal(t, "Secret", entry.Rarity)
	assert.Equal(t, catalogs.StatusSoldOut, entry.Status)
}

func TestTCGCornerParseItemUnsplittableName(t *testing.T) {
	src, items := tcgCornerParsed(t)
	_, err := src.parseItem(context.Background(), items[2])
	assert.Error(t, err)
}

func TestInlineRarity(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"LOB-AE001 Blue-Eyes White Dragon (Ultra Rare)", "Ultra Rare"},
		{"MRD-AE060 Mirror Force (Secret)", "Secret"},
		{"LOB-AE005 Exodia the Forbidden One", ""},
		{"SRL-AE000 (Parallel) Relinquished", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, inlineRarity(tt.name), tt.name)
	}
}

func TestTCGCornerDetailRarityFallsBack(t *testing.T) {
	src := NewTCGCorner(testFetcher(&stubDoer{}), "cardvault-test", "")

	// No href to follow.
	assert.Equal(t, "Undefined", src.detailRarity(context.Background(), ""))

	// Cancellation short-circuits before any request.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, "Undefined", src.detailRarity(ctx, "/products/x"))
}
