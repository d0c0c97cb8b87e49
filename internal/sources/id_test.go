package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryID(t *testing.T) {
	assert.Equal(t, 65, EntryID("A"))
	assert.Equal(t, 16706, EntryID("AB"))
	assert.Equal(t, 0, EntryID(""))
	assert.Equal(t, 0, EntryID("   "))
}

func TestEntryIDNormalizes(t *testing.T) {
	// Case and surrounding whitespace never change the identity.
	assert.Equal(t, EntryID("SM-51 Ultra Rare"), EntryID("  sm-51 ultra rare  "))
}

func TestEntryIDStableAndBounded(t *testing.T) {
	id := EntryID("SDK-001ウルトラレアScratch青眼の白龍")
	assert.Equal(t, id, EntryID("SDK-001ウルトラレアScratch青眼の白龍"))
	assert.Less(t, id, 1000000)
	assert.Greater(t, id, 0)
}

func TestEntryIDDistinguishesTuples(t *testing.T) {
	assert.NotEqual(t,
		EntryID("SDK-001UltraRareGood青眼の白龍"),
		EntryID("SDK-001SecretRareGood青眼の白龍"))
}
