package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2025, 3, 14, 23, 59, 58, 123, loc)

	got := StartOfDay(in)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestStartOfWeekIsMonday(t *testing.T) {
	// Wednesday 2025-03-12 belongs to the week starting Monday 2025-03-10.
	wednesday := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(wednesday))

	// Monday maps to itself.
	monday := time.Date(2025, 3, 10, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(monday))
}

func TestStartOfWeekSundayBelongsToPrecedingMonday(t *testing.T) {
	sunday := time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}

func TestStartOfMonth(t *testing.T) {
	in := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(in))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 3, 14, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestSameDayComparesInFirstArgumentsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+12", 12*3600)
	// 2025-03-14 20:00 UTC is already 2025-03-15 in UTC+12.
	utc := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)
	local := time.Date(2025, 3, 15, 14, 0, 0, 0, loc)

	assert.True(t, SameDay(local, utc))
	assert.False(t, SameDay(utc, local))
}
