package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/fetch"
	"github.com/sobani/cardvault/internal/jptext"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/constants"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

const bigwebEndpoint = "https://api.bigweb.co.jp/products?game_id=9&page=%d"

// bigwebScratchSlip is the condition slip Bigweb uses for damaged bargain
// stock.
const bigwebScratchSlip = "特価[傷含む]"

// Bigweb scrapes the Bigweb products API. The API paginates and reports its
// own page count; products that are not cards are missing listing fields and
// are skipped per record.
type Bigweb struct {
	fetcher     *fetch.Fetcher
	header      http.Header
	rarityAlias map[string]string
	logger      zerolog.Logger
}

var _ PriceSource = (*Bigweb)(nil)

// NewBigweb creates the Bigweb source.
func NewBigweb(fetcher *fetch.Fetcher, userAgent, cookie string, rarityAlias map[string]string) *Bigweb {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Cookie", strings.TrimSpace(strings.ReplaceAll(cookie, "\n", "")))
	header.Set("Accept-Language", "ja-JP,ja;q=0.9,en-US;q=0.6,en;q=0.5")

	if rarityAlias == nil {
		rarityAlias = map[string]string{}
	}

	return &Bigweb{
		fetcher:     fetcher,
		header:      header,
		rarityAlias: rarityAlias,
		logger:      logging.Component("bigweb"),
	}
}

// Market implements PriceSource.
func (b *Bigweb) Market() catalogs.Market {
	return catalogs.MarketBigweb
}

// Variant implements PriceSource.
func (b *Bigweb) Variant() string {
	return ""
}

// bigwebResponse is one page of the products API.
type bigwebResponse struct {
	Items    []bigwebItem `json:"items"`
	Pagenate struct {
		PageCount int `json:"pageCount"`
	} `json:"pagenate"`
}

// bigwebItem is one raw product record.
type bigwebItem struct {
	ID     int         `json:"id"`
	Price  json.Number `json:"price"`
	Name   string      `json:"name"`
	Fname  string      `json:"fname"`
	Rarity *struct {
		Slip string `json:"slip"`
	} `json:"rarity"`
	IsSoldOut bool `json:"is_sold_out"`
	Condition *struct {
		Slip string `json:"slip"`
	} `json:"condition"`
	Comment string `json:"comment"`
}

// Scrape walks the API pages in sequence until the reported page count.
func (b *Bigweb) Scrape(ctx context.Context) ([]catalogs.PriceEntry, error) {
	var entries []catalogs.PriceEntry

	for page := 1; ; page++ {
		body, err := b.fetcher.Get(ctx, fmt.Sprintf(bigwebEndpoint, page), b.header)
		if err != nil {
			if errors.IsCanceled(err) {
				return entries, err
			}
			break
		}

		var resp bigwebResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			b.logger.Warn().Err(err).Int("page", page).Msg("malformed page")
			break
		}
		if len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			entry, err := b.parseItem(item)
			if err != nil {
				b.logger.Warn().Err(err).Int("id", item.ID).Msg("record skipped")
				continue
			}
			entries = append(entries, entry)
		}

		b.logger.Info().Int("page", page).Msg("completed scraping page")
		if page >= resp.Pagenate.PageCount {
			break
		}
		if err := fetch.Politeness(ctx, constants.BigwebPageDelayMin, constants.BigwebPageDelayMax); err != nil {
			return entries, err
		}
	}

	return entries, nil
}

// parseItem converts one raw record into an observation. Records missing the
// listing fields are not cards (sleeves, boxes) and fail validation.
func (b *Bigweb) parseItem(item bigwebItem) (catalogs.PriceEntry, error) {
	if item.ID == 0 {
		return catalogs.PriceEntry{}, errors.NewValidationError("id", item.ID, "missing product id")
	}

	price, err := item.Price.Int64()
	if err != nil {
		return catalogs.PriceEntry{}, errors.NewValidationError("price", item.Price, "not numeric")
	}

	condition := catalogs.ConditionGood
	if item.Condition != nil && item.Condition.Slip == bigwebScratchSlip {
		condition = catalogs.ConditionScratch
	}

	status := catalogs.StatusForSale
	if item.IsSoldOut {
		status = catalogs.StatusSoldOut
	}

	entry := catalogs.PriceEntry{
		ID:           item.ID,
		Price:        int(price),
		Name:         jptext.HalfToFull(item.Name),
		SetNumber:    strings.ToUpper(strings.TrimSpace(item.Fname)),
		Rarity:       b.parseRarity(item),
		Condition:    condition,
		Status:       status,
		LastModified: time.Now().Unix(),
		Comment:      item.Comment,
	}

	if err := entry.Validate(); err != nil {
		return catalogs.PriceEntry{}, err
	}
	return entry, nil
}

// parseRarity folds the rarity slip through the alias table.
func (b *Bigweb) parseRarity(item bigwebItem) string {
	if item.Rarity == nil {
		return ""
	}
	slip := strings.TrimSpace(item.Rarity.Slip)
	if alias, ok := b.rarityAlias[slip]; ok {
		return alias
	}
	return slip
}

// LoadRarityAlias reads the rarity alias table. A missing file yields an
// empty table; slips then pass through unchanged.
func LoadRarityAlias(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.WrapParse("yaml", path, err)
	}

	alias := map[string]string{}
	if err := yaml.Unmarshal(data, &alias); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return alias, nil
}
