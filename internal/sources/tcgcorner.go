package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/sobani/cardvault/internal/fetch"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/constants"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

const (
	tcgCornerBase       = "https://tcg-corner.com"
	tcgCornerCollection = tcgCornerBase + "/collections/yu-gi-oh-single-card-asia-english"
)

// TCGCorner scrapes the TCG Corner Asian-English collection pages. Listing
// names lead with the set number and usually trail with "(rarity)"; when the
// rarity is not inlined it is read from the product detail page.
type TCGCorner struct {
	fetcher *fetch.Fetcher
	header  http.Header
	logger  zerolog.Logger
}

var _ PriceSource = (*TCGCorner)(nil)

// NewTCGCorner creates the TCG Corner source.
func NewTCGCorner(fetcher *fetch.Fetcher, userAgent, cookie string) *TCGCorner {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Cookie", strings.TrimSpace(strings.ReplaceAll(cookie, "\n", "")))
	header.Set("Accept-Language", "ja-JP,ja;q=0.9,en-US;q=0.6,en;q=0.5")
	header.Set("Referer", tcgCornerBase)

	return &TCGCorner{
		fetcher: fetcher,
		header:  header,
		logger:  logging.Component("tcg_corner"),
	}
}

// Market implements PriceSource.
func (t *TCGCorner) Market() catalogs.Market {
	return catalogs.MarketTCGCorner
}

// Variant implements PriceSource.
func (t *TCGCorner) Variant() string {
	return ""
}

// Scrape walks the collection pages in sequence until a page without items.
func (t *TCGCorner) Scrape(ctx context.Context) ([]catalogs.PriceEntry, error) {
	var entries []catalogs.PriceEntry

	for page := 1; ; page++ {
		url := tcgCornerCollection
		if page > 1 {
			url = fmt.Sprintf("%s?page=%d", tcgCornerCollection, page)
		}

		body, err := t.fetcher.Get(ctx, url, t.header)
		if err != nil {
			if errors.IsCanceled(err) {
				return entries, err
			}
			break
		}
		t.header.Set("Referer", url)

		doc, err := parseHTML(body)
		if err != nil {
			t.logger.Warn().Err(err).Int("page", page).Msg("malformed page")
			break
		}

		items := findAll(doc, element("div", "collection__item"))
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			entry, err := t.parseItem(ctx, item)
			if err != nil {
				t.logger.Warn().Err(err).Msg("record skipped")
				continue
			}
			entries = append(entries, entry)
		}

		t.logger.Info().Int("page", page).Msg("completed scraping page")
		if err := fetch.Politeness(ctx, constants.TCGCornerPageDelayMin, constants.TCGCornerPageDelayMax); err != nil {
			return entries, err
		}
	}

	return entries, nil
}

// parseItem converts one collection item into an observation.
func (t *TCGCorner) parseItem(ctx context.Context, item *html.Node) (catalogs.PriceEntry, error) {
	meta := findFirst(item, element("div", "product-card__meta-info"))
	link := findFirst(meta, func(n *html.Node) bool { return n.Data == "a" })
	if link == nil {
		return catalogs.PriceEntry{}, errors.NewValidationError("name", nil, "missing product link")
	}

	name := nodeText(link)
	info := strings.Fields(name)
	if len(info) < 2 {
		return catalogs.PriceEntry{}, errors.NewValidationError("name", name, "unsplittable listing name")
	}
	setNumber := info[0]

	priceNode := findFirst(item, func(n *html.Node) bool {
		return n.Data == "span" && hasClass(n, "price-item--regular") && attr(n, "data-product-price") != ""
	})
	price, err := parsePriceText(nodeText(priceNode))
	if err != nil {
		return catalogs.PriceEntry{}, err
	}

	status := catalogs.StatusForSale
	if findFirst(item, element("li", "product-card__label", "product-card__label--sold-out")) != nil {
		status = catalogs.StatusSoldOut
	}

	rarity := inlineRarity(name)
	if rarity == "" {
		// No "(rarity)" in the listing name; read the detail page.
		rarity = t.detailRarity(ctx, attr(link, "href"))
	}

	entry := catalogs.PriceEntry{
		ID:           EntryID(setNumber + rarity),
		Price:        price,
		Name:         name,
		SetNumber:    setNumber,
		Rarity:       rarity,
		Condition:    catalogs.ConditionGood,
		Status:       status,
		LastModified: time.Now().Unix(),
	}

	if err := entry.Validate(); err != nil {
		return catalogs.PriceEntry{}, err
	}
	return entry, nil
}

// inlineRarity extracts a trailing "(rarity)" from the listing name.
// Rarities may be multi-word ("Ultra Rare").
func inlineRarity(name string) string {
	if !strings.HasSuffix(name, ")") {
		return ""
	}
	open := strings.LastIndex(name, "(")
	if open < 0 {
		return ""
	}
	return strings.TrimSpace(name[open+1 : len(name)-1])
}

// detailRarity fetches the product detail page and reads the "Rarity:" line.
func (t *TCGCorner) detailRarity(ctx context.Context, href string) string {
	if href == "" {
		return "Undefined"
	}
	if err := fetch.Politeness(ctx, constants.TCGCornerDetailDelayMin, constants.TCGCornerDetailDelayMax); err != nil {
		return "Undefined"
	}

	body, err := t.fetcher.Get(ctx, tcgCornerBase+href, t.header)
	if err != nil {
		return "Undefined"
	}

	doc, err := parseHTML(body)
	if err != nil {
		return "Undefined"
	}

	var rarity string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if rarity != "" {
			return
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, "Rarity") {
			if _, after, found := strings.Cut(n.Data, ":"); found {
				rarity = strings.TrimSpace(after)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if rarity == "" {
		return "Undefined"
	}
	return rarity
}
