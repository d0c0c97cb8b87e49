package fetch

import "math/rand"

// randInt64 returns a uniform value in [0, n].
func randInt64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return rand.Int63n(n + 1)
}
