package sources

import (
	"math/big"
	"strconv"
	"strings"
)

// entryIDDigits bounds the derived identity to a stable, compact size.
const entryIDDigits = 6

// EntryID derives a stable, source-scoped numeric identity from normalized
// listing text. Shops without a native listing id get the same id for the
// same (set number, rarity, condition, name) tuple on every run, which is
// what de-duplicates their entries across ingestion cycles.
func EntryID(info string) int {
	normalized := strings.ToUpper(strings.TrimSpace(info))
	if normalized == "" {
		return 0
	}

	digits := new(big.Int).SetBytes([]byte(normalized)).String()
	if len(digits) > entryIDDigits {
		digits = digits[:entryIDDigits]
	}

	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return id
}
