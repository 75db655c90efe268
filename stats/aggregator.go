// Package stats derives point-in-time summaries from a list of match
// records. Every function is a pure function of its input: no stored
// state, no incremental maintenance, safe to re-run on every request.
package stats

import (
	"time"

	"github.com/courtpulse/badminton-system/models"
)

type Summary struct {
	Total              int     `json:"total"`
	Wins               int     `json:"wins"`
	WinRate            float64 `json:"win_rate"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
}

// Overall computes the headline summary. An empty input yields the zero
// Summary; there is no division by zero and no NaN. Negative durations
// count as zero minutes.
func Overall(matches []models.Match) Summary {
	s := Summary{Total: len(matches)}
	if s.Total == 0 {
		return s
	}

	var totalMinutes int
	for _, m := range matches {
		if m.Result == models.ResultWin {
			s.Wins++
		}
		if m.DurationMinutes > 0 {
			totalMinutes += m.DurationMinutes
		}
	}
	s.WinRate = float64(s.Wins) / float64(s.Total)
	s.AvgDurationMinutes = float64(totalMinutes) / float64(s.Total)
	return s
}

// CountByKind partitions matches by kind. The counts always sum to
// len(matches); unknown kinds are counted under their own label rather
// than dropped.
func CountByKind(matches []models.Match) map[models.MatchKind]int {
	counts := make(map[models.MatchKind]int, 3)
	for _, m := range matches {
		counts[m.Kind]++
	}
	return counts
}

type TrendBucket struct {
	Date    time.Time `json:"date"`
	Matches int       `json:"matches"`
	Wins    int       `json:"wins"`
}

// DailyTrend buckets matches into one entry per trailing calendar day,
// ordered oldest to newest, with now's day last. A match belongs to the
// bucket of its calendar day, not to a rolling 24h window.
func DailyTrend(matches []models.Match, now time.Time, days int) []TrendBucket {
	if days <= 0 {
		return []TrendBucket{}
	}

	buckets := make([]TrendBucket, days)
	// Index by calendar date, not by elapsed hours: around DST changes a
	// day is not 24h long.
	indexByDay := make(map[time.Time]int, days)
	for i := 0; i < days; i++ {
		date := StartOfDay(now).AddDate(0, 0, i-days+1)
		buckets[i] = TrendBucket{Date: date}
		indexByDay[date] = i
	}

	for _, m := range matches {
		day := StartOfDay(m.PlayedAt.In(now.Location()))
		idx, ok := indexByDay[day]
		if !ok {
			continue
		}
		buckets[idx].Matches++
		if m.Result == models.ResultWin {
			buckets[idx].Wins++
		}
	}
	return buckets
}

// Today filters matches played on now's calendar day.
func Today(matches []models.Match, now time.Time) []models.Match {
	result := make([]models.Match, 0)
	for _, m := range matches {
		if SameDay(now, m.PlayedAt) {
			result = append(result, m)
		}
	}
	return result
}

type DurationExtremes struct {
	LongestMinutes  int `json:"longest_minutes"`
	ShortestMinutes int `json:"shortest_minutes"`
}

// Extremes returns the longest and shortest recorded durations. Zero
// values on empty input.
func Extremes(matches []models.Match) DurationExtremes {
	var e DurationExtremes
	for i, m := range matches {
		d := m.DurationMinutes
		if d < 0 {
			d = 0
		}
		if i == 0 || d > e.LongestMinutes {
			e.LongestMinutes = d
		}
		if i == 0 || d < e.ShortestMinutes {
			e.ShortestMinutes = d
		}
	}
	return e
}
