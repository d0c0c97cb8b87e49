package sources

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/fetch"
	"github.com/sobani/cardvault/internal/jptext"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

const yamlYugiEndpoint = "https://raw.githubusercontent.com/DawnbrandBots/yaml-yugi/aggregate/cards.json"

// YAMLYugi scrapes the YAML Yugi aggregate card dump: the authoritative
// baseline for konami_ids, names, and Japanese set lists. Cards without a
// konami_id are skipped; Yugipedia covers those.
type YAMLYugi struct {
	fetcher *fetch.Fetcher
	logger  zerolog.Logger
}

var _ CardSource = (*YAMLYugi)(nil)

// NewYAMLYugi creates the YAML Yugi source.
func NewYAMLYugi(fetcher *fetch.Fetcher) *YAMLYugi {
	return &YAMLYugi{
		fetcher: fetcher,
		logger:  logging.Component("yaml_yugi"),
	}
}

// Name implements CardSource.
func (y *YAMLYugi) Name() string {
	return "yaml_yugi"
}

// yamlYugiCard is one raw record of the aggregate dump.
type yamlYugiCard struct {
	KonamiID *int         `json:"konami_id"`
	Password *json.Number `json:"password"`
	Name     struct {
		EN string `json:"en"`
		JA string `json:"ja"`
	} `json:"name"`
	Sets struct {
		JA []struct {
			SetNumber string `json:"set_number"`
		} `json:"ja"`
	} `json:"sets"`
}

// Scrape fetches and parses the aggregate dump.
func (y *YAMLYugi) Scrape(ctx context.Context) ([]catalogs.Card, error) {
	body, err := y.fetcher.Get(ctx, yamlYugiEndpoint, http.Header{})
	if err != nil {
		if errors.IsCanceled(err) {
			return nil, err
		}
		return nil, nil
	}

	cards, err := y.parseCards(body)
	if err != nil {
		return nil, err
	}

	y.logger.Info().Int("cards", len(cards)).Msg("parsed aggregate dump")
	return cards, nil
}

// parseCards converts the raw dump, skipping records without a konami_id.
func (y *YAMLYugi) parseCards(body []byte) ([]catalogs.Card, error) {
	var raw []yamlYugiCard
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.WrapParse("json", "yaml_yugi", err)
	}

	cards := make([]catalogs.Card, 0, len(raw))
	for _, rc := range raw {
		if rc.KonamiID == nil || *rc.KonamiID == 0 {
			continue
		}

		jaName := ""
		if rc.Name.JA != "" {
			jaName = jptext.CollapseRuby(rc.Name.JA)
		}

		password := 0
		if rc.Password != nil {
			if p, err := rc.Password.Int64(); err == nil {
				password = int(p)
			}
		}

		sets := make([]catalogs.SetRef, 0, len(rc.Sets.JA))
		for _, s := range rc.Sets.JA {
			sets = append(sets, catalogs.SetRef{SetNumber: s.SetNumber})
		}

		cards = append(cards, catalogs.Card{
			Name:     catalogs.Name{EN: rc.Name.EN, JA: jaName},
			KonamiID: *rc.KonamiID,
			Password: password,
			Sets:     catalogs.Sets{JA: catalogs.DedupeSets(sets), AE: []catalogs.SetRef{}},
		})
	}

	return cards, nil
}
