package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(0, 0))
	assert.Equal(t, 1, Score(1, 0))
	assert.Equal(t, 3, Score(1, 1))
	assert.Equal(t, 14, Score(10, 2))
}

func TestScoreClampsNonsense(t *testing.T) {
	assert.Equal(t, 0, Score(-3, -1))
	// Wins above matches are treated as all wins.
	assert.Equal(t, 6, Score(2, 5))
}

func TestRankOrdersByPointsThenWinRate(t *testing.T) {
	entries := []Entry{
		{UserID: 1, Nickname: "anna", Points: 10, WinRate: 0.5},
		{UserID: 2, Nickname: "boris", Points: 30, WinRate: 0.8},
		{UserID: 3, Nickname: "clara", Points: 10, WinRate: 0.75},
	}

	ranked := Rank(entries)

	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].UserID)
	assert.Equal(t, 3, ranked[1].UserID)
	assert.Equal(t, 1, ranked[2].UserID)
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
}

func TestRankSharesTiesAndSkipsFollowing(t *testing.T) {
	entries := []Entry{
		{UserID: 1, Nickname: "anna", Points: 30, WinRate: 0.8, Matches: 12},
		{UserID: 2, Nickname: "boris", Points: 30, WinRate: 0.8, Matches: 10},
		{UserID: 3, Nickname: "clara", Points: 20, WinRate: 0.6},
	}

	ranked := Rank(entries)

	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 1, ranked[1].Rank)
	// Third entry skips the shared rank.
	assert.Equal(t, 3, ranked[2].Rank)

	// More matches breaks the sort order inside a tie.
	assert.Equal(t, 1, ranked[0].UserID)
	assert.Equal(t, 2, ranked[1].UserID)
}

func TestRankNicknameIsFinalTiebreak(t *testing.T) {
	entries := []Entry{
		{UserID: 2, Nickname: "zoe", Points: 10, WinRate: 0.5, Matches: 4},
		{UserID: 1, Nickname: "adam", Points: 10, WinRate: 0.5, Matches: 4},
	}

	ranked := Rank(entries)

	assert.Equal(t, "adam", ranked[0].Nickname)
	assert.Equal(t, "zoe", ranked[1].Nickname)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 1, ranked[1].Rank)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{UserID: 1, Nickname: "anna", Points: 5},
		{UserID: 2, Nickname: "boris", Points: 10},
	}

	_ = Rank(entries)

	assert.Equal(t, 1, entries[0].UserID)
	assert.Equal(t, 0, entries[0].Rank)
}
