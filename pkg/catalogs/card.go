// Package catalogs defines the canonical card catalog data model: the card
// documents persisted in the catalog store, their locale-scoped set lists,
// and the per-market price entries reconciled onto them.
package catalogs

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sobani/cardvault/pkg/errors"
)

// SentinelKonamiID is the reserved konami_id of the generic token
// placeholder card. Multiple token observations converge to this single
// catalog entry.
const SentinelKonamiID = 0

// Name holds a card's display names per language.
type Name struct {
	EN string `bson:"en" json:"en"`
	JA string `bson:"ja" json:"ja"`
}

// ForLocale returns the name in the given locale.
func (n Name) ForLocale(locale Locale) string {
	if locale == LocaleEN {
		return n.EN
	}
	return n.JA
}

// SetRef is one known set printing of a card.
type SetRef struct {
	SetNumber string `bson:"set_number" json:"set_number"`
}

// Sets holds a card's known set codes per print region. Lists are
// deduplicated; insertion order carries no meaning.
type Sets struct {
	JA []SetRef `bson:"ja" json:"ja"`
	AE []SetRef `bson:"ae" json:"ae"`
}

// ForLocale returns the set list for a print region.
func (s Sets) ForLocale(locale Locale) []SetRef {
	if locale == LocaleAE {
		return s.AE
	}
	return s.JA
}

// Card is the canonical catalog entity a set of scraped observations should
// converge to. One document per physical card.
type Card struct {
	DocID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name     Name               `bson:"name" json:"name"`
	KonamiID int                `bson:"konami_id" json:"konami_id"`
	Password int                `bson:"password,omitempty" json:"password,omitempty"`
	Sets     Sets               `bson:"sets" json:"sets"`
	Prices   CardPrices         `bson:"card_prices,omitempty" json:"card_prices,omitempty"`
}

// IsSentinel reports whether the card is the generic token placeholder.
func (c *Card) IsSentinel() bool {
	return c.KonamiID == SentinelKonamiID
}

// Identified reports whether the card carries a trusted numeric identifier.
// Cards matched only by name (tokens, placeholder records) have
// konami_id <= 0 and must never overwrite existing metadata.
func (c *Card) Identified() bool {
	return c.KonamiID > 0
}

// Validate checks that a card record is well-formed enough to be merged into
// the catalog: it needs either a trusted identifier or an English name to be
// addressable.
func (c *Card) Validate() error {
	if c.KonamiID <= 0 && c.Name.EN == "" {
		return errors.NewValidationError("name.en", c.Name.EN,
			"card without a positive konami_id needs an English name")
	}
	return nil
}

// DedupeSets removes duplicate and blank set numbers from a set list,
// preserving first-seen order.
func DedupeSets(sets []SetRef) []SetRef {
	seen := make(map[string]struct{}, len(sets))
	unique := make([]SetRef, 0, len(sets))

	for _, s := range sets {
		if s.SetNumber == "" || s.SetNumber == " " {
			continue
		}
		if _, ok := seen[s.SetNumber]; ok {
			continue
		}
		seen[s.SetNumber] = struct{}{}
		unique = append(unique, s)
	}

	return unique
}
