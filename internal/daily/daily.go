// Package daily implements the once-a-day quiz: the words masked for a note are
// fixed for the whole UTC day, so restarting the quiz cannot re-roll them.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/noterecall/internal/sampler"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Rand returns a sampling source derived from HMAC(salt, date|owner|path).
// The same inputs always yield the same sequence.
func Rand(date time.Time, salt, owner, path string) *rand.Rand {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	h.Write([]byte{0})
	h.Write([]byte(owner))
	h.Write([]byte{0})
	h.Write([]byte(path))
	sum := h.Sum(nil)
	// first 16 bytes seed the two PCG words
	return sampler.Seeded(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16]))
}
