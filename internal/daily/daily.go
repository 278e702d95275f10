package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ProblemIndex returns a deterministic problem index for a date using
// HMAC(salt, YYYY-MM-DD) % count.
func ProblemIndex(date time.Time, salt string, count int) int {
	if count <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for an even spread under the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(count))
}

// Picker returns a pick function for game.WithPicker that ignores
// randomness and always selects the problem of the day.
func Picker(now func() time.Time, salt string) func(n int) int {
	return func(n int) int { return ProblemIndex(now(), salt, n) }
}
