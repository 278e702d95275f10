package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-03-02 05:00 at +10 is still 2024-03-01 in UTC
	ts := time.Date(2024, 3, 2, 5, 0, 0, 0, loc)
	assert.Equal(t, "2024-03-01", DateKey(ts))
}

func TestProblemIndex(t *testing.T) {
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("deterministic within a day", func(t *testing.T) {
		morning := time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC)
		assert.Equal(t, ProblemIndex(day, "salt", 16), ProblemIndex(morning, "salt", 16))
	})

	t.Run("in range", func(t *testing.T) {
		for i := 0; i < 60; i++ {
			idx := ProblemIndex(day.AddDate(0, 0, i), "salt", 7)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 7)
		}
	})

	t.Run("salt changes the sequence", func(t *testing.T) {
		differs := false
		for i := 0; i < 30 && !differs; i++ {
			d := day.AddDate(0, 0, i)
			differs = ProblemIndex(d, "a", 1000) != ProblemIndex(d, "b", 1000)
		}
		assert.True(t, differs)
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, 0, ProblemIndex(day, "salt", 0))
	})
}

func TestPicker(t *testing.T) {
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	pick := Picker(func() time.Time { return day }, "salt")
	assert.Equal(t, ProblemIndex(day, "salt", 16), pick(16))
}
