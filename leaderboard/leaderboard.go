// Package leaderboard ranks circle members by their recorded results.
// Pure computation over snapshots; the circle service assembles the
// entries and serves the ranked slice as-is.
package leaderboard

import "sort"

type Entry struct {
	UserID   int     `json:"user_id"`
	Nickname string  `json:"nickname"`
	Level    int     `json:"level"`
	Matches  int     `json:"matches"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"win_rate"`
	Points   int     `json:"points"`
	Rank     int     `json:"rank"`
}

// Rank orders entries by points, then win rate, then match count, then
// nickname for a stable order, and assigns competition ranking: equal
// (points, win rate) pairs share a rank, and the next distinct entry
// skips past them.
func Rank(entries []Entry) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Matches != b.Matches {
			return a.Matches > b.Matches
		}
		return a.Nickname < b.Nickname
	})

	for i := range ranked {
		if i > 0 && ranked[i].Points == ranked[i-1].Points && ranked[i].WinRate == ranked[i-1].WinRate {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	return ranked
}

// Score converts a member's results into leaderboard points: three per
// win, one per additional match played.
func Score(matches, wins int) int {
	if matches < 0 {
		matches = 0
	}
	if wins < 0 {
		wins = 0
	}
	if wins > matches {
		wins = matches
	}
	return 3*wins + (matches - wins)
}
