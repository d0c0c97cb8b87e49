package catalogs

// Market identifies one external pricing source. The set of markets is fixed
// and known at deploy time; it doubles as the key set of a card's
// card_prices document.
type Market string

// String returns the string representation of a market.
func (m Market) String() string {
	return string(m)
}

// Known markets.
const (
	MarketBigweb    Market = "bigweb"
	MarketYuyutei   Market = "yuyutei"
	MarketTCGCorner Market = "tcg_corner"
)

// Markets returns all known markets.
func Markets() []Market {
	return []Market{
		MarketBigweb,
		MarketYuyutei,
		MarketTCGCorner,
	}
}

// Locale identifies a language or print region used for matching.
type Locale string

// Known locales. Names exist in "en" and "ja"; set lists exist per print
// region, "ja" (Japanese) and "ae" (Asian-English).
const (
	LocaleEN Locale = "en"
	LocaleJA Locale = "ja"
	LocaleAE Locale = "ae"
)

// MarketContext describes how observations from a market are matched against
// the catalog.
type MarketContext struct {
	// Market is the source the observations came from.
	Market Market

	// NameLocale is the name language used for the fuzzy name fallback.
	NameLocale Locale

	// SetLocale selects which of a card's set lists the containment match
	// scans.
	SetLocale Locale

	// CheckSafe enables the safety gate: token redirection and unsafe
	// rejection. Set for markets whose raw data is ambiguous enough to risk
	// mismatching unrelated cards.
	CheckSafe bool

	// CheckComment enables the comment-based unsafe checks. Only Bigweb
	// exposes a comment field.
	CheckComment bool
}

// ContextFor returns the matching context for a market.
// TCG Corner sells Asian-English prints under English names; the Japanese
// shops are matched on Japanese names and Japanese set lists.
func ContextFor(m Market) MarketContext {
	switch m {
	case MarketTCGCorner:
		return MarketContext{
			Market:     m,
			NameLocale: LocaleEN,
			SetLocale:  LocaleAE,
		}
	case MarketBigweb:
		return MarketContext{
			Market:       m,
			NameLocale:   LocaleJA,
			SetLocale:    LocaleJA,
			CheckSafe:    true,
			CheckComment: true,
		}
	case MarketYuyutei:
		return MarketContext{
			Market:     m,
			NameLocale: LocaleJA,
			SetLocale:  LocaleJA,
			CheckSafe:  true,
		}
	default:
		return MarketContext{
			Market:     m,
			NameLocale: LocaleJA,
			SetLocale:  LocaleJA,
		}
	}
}
