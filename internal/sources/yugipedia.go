package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/fetch"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/constants"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

const yugipediaAPI = "https://yugipedia.com/api.php"

// Yugipedia scrapes the Yugipedia Semantic MediaWiki ask API for what YAML
// Yugi lacks: Asian-English set numbers, plus tokens, counters, and illegal
// cards that have no konami_id. YAML Yugi data should be merged first so
// these partial records only fill gaps.
type Yugipedia struct {
	fetcher *fetch.Fetcher
	header  http.Header
	logger  zerolog.Logger
}

var _ CardSource = (*Yugipedia)(nil)

// NewYugipedia creates the Yugipedia source. The wiki asks scrapers to leave
// service and contact information in the user agent.
func NewYugipedia(fetcher *fetch.Fetcher) *Yugipedia {
	header := http.Header{}
	header.Set("User-Agent", fmt.Sprintf("cardvault (https://github.com/sobani/cardvault) go/%s", runtime.Version()))

	return &Yugipedia{
		fetcher: fetcher,
		header:  header,
		logger:  logging.Component("yugipedia"),
	}
}

// Name implements CardSource.
func (y *Yugipedia) Name() string {
	return "yugipedia"
}

// yugipediaQuery is one ask-API query and the locale its set numbers belong
// to.
type yugipediaQuery struct {
	label     string
	endpoint  string
	setLocale catalogs.Locale
}

// queries returns the four queries in merge order.
func (y *Yugipedia) queries() []yugipediaQuery {
	return []yugipediaQuery{
		{
			label:     "asian_english_sets",
			endpoint:  askEndpoint("Asian-English", "", 5000),
			setLocale: catalogs.LocaleAE,
		},
		{
			label:     "counters",
			endpoint:  askEndpoint("Japanese", "[[Set contains.Card type::Counter]]", 500),
			setLocale: catalogs.LocaleJA,
		},
		{
			label:     "tokens",
			endpoint:  askEndpoint("Japanese", "[[Set contains.English name::Token]]", 500),
			setLocale: catalogs.LocaleJA,
		},
		{
			label:     "illegal_cards",
			endpoint:  askEndpoint("Japanese", "[[Set contains.OCG status::Illegal]]", 500),
			setLocale: catalogs.LocaleJA,
		},
	}
}

// askResponse is the ask-API result shape.
type askResponse struct {
	Query struct {
		Results map[string]struct {
			Printouts struct {
				CardNumber       []string      `json:"Card number"`
				EnglishName      []string      `json:"English name"`
				JapaneseBaseName []string      `json:"Japanese base name"`
				DatabaseID       []json.Number `json:"Database ID"`
				Password         []json.Number `json:"Password"`
			} `json:"printouts"`
		} `json:"results"`
	} `json:"query"`
}

// Scrape runs all queries in sequence with a pause between them and
// concatenates their records.
func (y *Yugipedia) Scrape(ctx context.Context) ([]catalogs.Card, error) {
	var cards []catalogs.Card

	for i, q := range y.queries() {
		if i > 0 {
			if err := fetch.Politeness(ctx, constants.YugipediaQueryDelay, constants.YugipediaQueryDelay); err != nil {
				return cards, err
			}
		}

		body, err := y.fetcher.Get(ctx, q.endpoint, y.header)
		if err != nil {
			if errors.IsCanceled(err) {
				return cards, err
			}
			y.logger.Warn().Str("query", q.label).Msg("query unavailable")
			continue
		}

		parsed, err := y.parseCards(body, q.setLocale)
		if err != nil {
			y.logger.Warn().Err(err).Str("query", q.label).Msg("query skipped")
			continue
		}

		y.logger.Info().Str("query", q.label).Int("cards", len(parsed)).Msg("query parsed")
		cards = append(cards, parsed...)
	}

	return cards, nil
}

// parseCards converts one ask response. Tokens are forced to the sentinel
// identity; cards with neither a set number nor a Japanese name, or without
// both an English name and a database id, carry nothing mergeable.
func (y *Yugipedia) parseCards(body []byte, setLocale catalogs.Locale) ([]catalogs.Card, error) {
	var resp askResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WrapParse("json", "yugipedia", err)
	}

	var cards []catalogs.Card
	for _, result := range resp.Query.Results {
		p := result.Printouts

		setNumber := firstString(p.CardNumber)
		enName := firstString(p.EnglishName)
		jaName := firstString(p.JapaneseBaseName)

		konamiID := -1
		password := -1
		if enName == "Token" {
			konamiID = catalogs.SentinelKonamiID
			password = 0
		} else {
			konamiID = firstNumber(p.DatabaseID, -1)
			password = firstNumber(p.Password, -1)
		}

		if (setNumber == "" && jaName == "") || (enName == "" && konamiID < 0) {
			continue
		}

		card := catalogs.Card{
			Name:     catalogs.Name{EN: enName, JA: jaName},
			KonamiID: konamiID,
			Password: password,
		}
		if setNumber != "" {
			refs := []catalogs.SetRef{{SetNumber: setNumber}}
			if setLocale == catalogs.LocaleAE {
				card.Sets.AE = refs
			} else {
				card.Sets.JA = refs
			}
		}

		cards = append(cards, card)
	}

	return cards, nil
}

// askEndpoint builds a Semantic MediaWiki ask query URL for sets of the
// given locality.
func askEndpoint(locality, conditions string, limit int) string {
	query := fmt.Sprintf(
		"[[-Has subobject.Locality::%s]] %s|?Card number|?Set contains.English name|?Set contains.Japanese base name|?Set contains.Database ID|?Set contains.Password|limit=%d|offset=0",
		locality, conditions, limit)

	params := url.Values{}
	params.Set("action", "ask")
	params.Set("query", query)
	params.Set("format", "json")

	return yugipediaAPI + "?" + params.Encode()
}

// firstString returns the first element or "".
func firstString(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// firstNumber returns the first element as an int, or fallback.
func firstNumber(values []json.Number, fallback int) int {
	if len(values) == 0 {
		return fallback
	}
	n, err := values[0].Int64()
	if err != nil {
		return fallback
	}
	return int(n)
}
