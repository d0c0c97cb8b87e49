package sources

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
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
	yuyuteiEndpoint = "https://yuyu-tei.jp/sell/ygo/s/search?search_word=&%s"
	yuyuteiReferer  = "https://yuyu-tei.jp/top/ygo"
)

// KizuVariant is the query fragment selecting Yuyutei's damaged stock
// search. It runs as an independent ingestion task.
const KizuVariant = "kizu=1"

// Yuyutei scrapes the Yuyutei sell listings. Listings carry no native id, so
// identity is derived from the normalized listing text. Yuyutei prohibits
// scraping; the page delay keeps requests to one every 20 to 25 seconds.
type Yuyutei struct {
	fetcher *fetch.Fetcher
	header  http.Header
	kizu    string
	logger  zerolog.Logger
}

var _ PriceSource = (*Yuyutei)(nil)

// NewYuyutei creates a Yuyutei source. kizu is "" for the default stock
// search or KizuVariant for damaged stock.
func NewYuyutei(fetcher *fetch.Fetcher, userAgent, cookie, kizu string) *Yuyutei {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Cookie", strings.TrimSpace(strings.ReplaceAll(cookie, "\n", "")))
	header.Set("Accept-Language", "ja-JP,ja;q=0.9,en-US;q=0.6,en;q=0.5")
	header.Set("Referer", yuyuteiReferer)

	return &Yuyutei{
		fetcher: fetcher,
		header:  header,
		kizu:    kizu,
		logger: logging.Component("yuyutei").With().
			Str("variant", kizu).Logger(),
	}
}

// Market implements PriceSource.
func (y *Yuyutei) Market() catalogs.Market {
	return catalogs.MarketYuyutei
}

// Variant implements PriceSource.
func (y *Yuyutei) Variant() string {
	if y.kizu != "" {
		return "kizu"
	}
	return ""
}

// Scrape walks the search result pages in sequence until a page without
// listings.
func (y *Yuyutei) Scrape(ctx context.Context) ([]catalogs.PriceEntry, error) {
	var entries []catalogs.PriceEntry
	base := fmt.Sprintf(yuyuteiEndpoint, y.kizu)

	for page := 1; ; page++ {
		url := base
		if page > 1 {
			url = fmt.Sprintf("%s&page=%d", base, page)
		}

		body, err := y.fetcher.Get(ctx, url, y.header)
		if err != nil {
			if errors.IsCanceled(err) {
				return entries, err
			}
			break
		}
		y.header.Set("Referer", url)

		doc, err := parseHTML(body)
		if err != nil {
			y.logger.Warn().Err(err).Int("page", page).Msg("malformed page")
			break
		}

		groups := findAll(doc, element("div", "py-4", "cards-list"))
		if len(groups) == 0 {
			break
		}

		for _, group := range groups {
			rarity := y.parseRarity(group)
			for _, card := range findAll(group, element("div", "card-product")) {
				entry, err := y.parseCard(card, rarity)
				if err != nil {
					y.logger.Warn().Err(err).Msg("record skipped")
					continue
				}
				entries = append(entries, entry)
			}
		}

		y.logger.Info().Int("page", page).Msg("completed scraping page")
		if err := fetch.Politeness(ctx, constants.YuyuteiPageDelayMin, constants.YuyuteiPageDelayMax); err != nil {
			return entries, err
		}
	}

	return entries, nil
}

// parseRarity reads the rarity badge heading a listing group.
func (y *Yuyutei) parseRarity(group *html.Node) string {
	badge := findFirst(group, element("span", "py-2", "d-inline-block", "px-2", "me-2", "text-white", "fw-bold"))
	return nodeText(badge)
}

// parseCard converts one listing node into an observation.
func (y *Yuyutei) parseCard(card *html.Node, rarity string) (catalogs.PriceEntry, error) {
	name := nodeText(findFirst(card, element("h4", "text-primary", "fw-bold")))
	if name == "" {
		return catalogs.PriceEntry{}, errors.NewValidationError("name", name, "missing listing name")
	}

	priceNode := findFirst(card, func(n *html.Node) bool {
		return n.Data == "strong" && strings.HasPrefix(attr(n, "class"), "d-block text-end")
	})
	price, err := parsePriceText(nodeText(priceNode))
	if err != nil {
		return catalogs.PriceEntry{}, err
	}

	setNumber := "Undefined"
	setNode := findFirst(card, element("span", "d-block", "border", "border-dark", "p-1", "w-100", "text-center", "my-2"))
	if text := nodeText(setNode); text != "" && text != "-" {
		setNumber = text
	}

	condition := catalogs.ConditionGood
	if y.kizu != "" {
		condition = catalogs.ConditionScratch
	}

	status := catalogs.StatusForSale
	if hasClass(card, "sold-out") {
		status = catalogs.StatusSoldOut
	}

	info := strings.ReplaceAll(setNumber+rarity+string(condition)+name, " ", "")
	entry := catalogs.PriceEntry{
		ID:           EntryID(info),
		Price:        price,
		Name:         name,
		SetNumber:    setNumber,
		Rarity:       rarity,
		Condition:    condition,
		Status:       status,
		LastModified: time.Now().Unix(),
	}

	if err := entry.Validate(); err != nil {
		return catalogs.PriceEntry{}, err
	}
	return entry, nil
}

// parsePriceText parses a price like "1,234 円".
func parsePriceText(text string) (int, error) {
	if text == "" {
		return 0, errors.NewValidationError("price", text, "missing price")
	}
	raw := strings.Fields(text)[0]
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimPrefix(raw, "¥")

	price, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError("price", text, "not numeric")
	}
	return price, nil
}
