// internal/daily/daily.go
//
// Deterministic puzzle-of-the-day selection.
// Every server with the same salt and catalog serves the same puzzle on the
// same UTC date.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/linkdle/internal/words"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PuzzleIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func PuzzleIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Today returns the date key and puzzle for now.
func Today(now time.Time, salt string, c *words.Catalog) (string, words.Puzzle) {
	p, _ := c.At(PuzzleIndex(now, salt, c.Len()))
	return DateKey(now), p
}
