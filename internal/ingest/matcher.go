// Package ingest implements the reconciliation-and-upsert engine: matching
// price observations to canonical cards against a task-local snapshot,
// planning the minimal catalog mutation, and committing planned mutations as
// one unordered batch per ingestion task.
package ingest

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

// tokenMarker appears in the Japanese display name of token listings.
const tokenMarker = "トークン"

// tokenNameAllowList holds the konami_ids of the legitimately token-named
// cards: "Token Thanksgiving", "Token Feastevil", "Token Sundae",
// "Oh Tokenbaum!". A token marker in a listing matched to one of these is
// the card itself, not a generic token.
var tokenNameAllowList = map[int]struct{}{
	6364:  {},
	5733:  {},
	9348:  {},
	10467: {},
}

// tokenSetMarkers mark set codes of token printings.
var tokenSetMarkers = []string{"JPT", "JPS"}

// unsafeSetMarkers mark cross-region or cross-format printings whose
// observations must never be counted against the Japanese catalog entries.
var unsafeSetMarkers = []string{"-EN", "JPP", "-AE"}

// unsafeCommentMarkers mark shop comments that reveal a cross-region item.
var unsafeCommentMarkers = []string{"-EN", "-AE"}

// undefinedRarity is the explicit "no rarity" marker some shops use.
const undefinedRarity = "-"

// MatchKind is the outcome class of a match attempt.
type MatchKind int

const (
	// NoMatch means no catalog entity could be resolved; the observation is
	// silently skipped.
	NoMatch MatchKind = iota
	// Matched means a canonical card was resolved.
	Matched
	// Rejected means the safety gate discarded the observation; no update
	// may be emitted for it.
	Rejected
)

// MatchResult is the outcome of resolving one observation.
type MatchResult struct {
	Kind   MatchKind
	Card   *catalogs.Card
	Reason string
}

// Matcher resolves price observations to canonical cards. It scans a
// task-local catalog snapshot for set-number containment, falls back to the
// store's fuzzy name search, and applies the safety gate for markets whose
// raw data is ambiguous.
type Matcher struct {
	store    store.Store
	snapshot []*catalogs.Card
	mctx     catalogs.MarketContext
	logger   zerolog.Logger
}

// NewMatcher creates a matcher over a snapshot for one market context.
func NewMatcher(st store.Store, snapshot []*catalogs.Card, mctx catalogs.MarketContext) *Matcher {
	return &Matcher{
		store:    st,
		snapshot: snapshot,
		mctx:     mctx,
		logger: logging.Component("matcher").With().
			Str("market", mctx.Market.String()).Logger(),
	}
}

// Match resolves one observation.
func (m *Matcher) Match(ctx context.Context, entry catalogs.PriceEntry) MatchResult {
	card := m.bySetNumber(entry.SetNumber)
	if card == nil {
		card = m.byName(ctx, entry.Name)
	}
	if card == nil {
		return MatchResult{Kind: NoMatch}
	}

	if m.mctx.CheckSafe {
		return m.gate(ctx, entry, card)
	}
	return MatchResult{Kind: Matched, Card: card}
}

// bySetNumber returns the first card in snapshot order with a known set code
// that is a substring of the observed code. Observed codes are often
// concatenations ("LOB-JP001 LOB-EN001"), hence containment rather than
// equality. When two cards' codes collide the tie-break is snapshot order;
// this is a known precision limitation, kept deterministic on purpose.
func (m *Matcher) bySetNumber(observed string) *catalogs.Card {
	if observed == "" {
		return nil
	}
	for _, card := range m.snapshot {
		for _, set := range card.Sets.ForLocale(m.mctx.SetLocale) {
			if set.SetNumber == "" {
				continue
			}
			if strings.Contains(observed, set.SetNumber) {
				return card
			}
		}
	}
	return nil
}

// byName falls back to the store's fuzzy name search in the market's
// language.
func (m *Matcher) byName(ctx context.Context, name string) *catalogs.Card {
	card, err := m.store.SearchByName(ctx, m.mctx.NameLocale, name)
	if err != nil {
		if !errors.IsNotFound(err) {
			m.logger.Warn().Err(err).Str("name", name).Msg("name search failed")
		}
		return nil
	}
	return card
}

// gate applies the safety heuristics: token observations are redirected to
// the sentinel card, cross-region observations are discarded, and a name
// disagreement is logged but tolerated.
func (m *Matcher) gate(ctx context.Context, entry catalogs.PriceEntry, card *catalogs.Card) MatchResult {
	if m.isToken(entry, card) {
		sentinel, err := m.store.FindSentinel(ctx)
		if err != nil {
			m.logger.Warn().Err(err).Msg("token observation but no sentinel card")
			return MatchResult{Kind: NoMatch}
		}
		card = sentinel
	} else if reason := m.unsafeReason(entry); reason != "" {
		return MatchResult{Kind: Rejected, Reason: reason}
	}

	if !card.IsSentinel() && card.Name.ForLocale(m.mctx.NameLocale) != entry.Name {
		// Best-effort matching, not strict verification.
		m.logger.Warn().
			Int("konami_id", card.KonamiID).
			Str("observed", entry.Name).
			Str("canonical", card.Name.ForLocale(m.mctx.NameLocale)).
			Msg("matched card name disagrees with observation")
	}

	return MatchResult{Kind: Matched, Card: card}
}

// isToken reports whether the observation is a generic token: the token
// marker in its name (unless the matched card is legitimately token-named)
// or a token set marker in its code.
func (m *Matcher) isToken(entry catalogs.PriceEntry, card *catalogs.Card) bool {
	if strings.Contains(entry.Name, tokenMarker) {
		if _, allowed := tokenNameAllowList[card.KonamiID]; !allowed {
			return true
		}
	}
	return containsAny(entry.SetNumber, tokenSetMarkers)
}

// unsafeReason returns why the observation must be discarded, or "" when it
// is safe.
func (m *Matcher) unsafeReason(entry catalogs.PriceEntry) string {
	if containsAny(entry.SetNumber, unsafeSetMarkers) {
		return "cross-region set code"
	}
	if m.mctx.CheckComment {
		if entry.Comment == "" {
			return "missing comment"
		}
		if containsAny(entry.Comment, unsafeCommentMarkers) {
			return "cross-region comment"
		}
	}
	if entry.Rarity == undefinedRarity {
		return "undefined rarity"
	}
	return ""
}

// containsAny reports whether s contains any of the markers.
func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
