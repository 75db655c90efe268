package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtpulse/badminton-system/models"
)

func playedMatch(result models.MatchResult, kind models.MatchKind, playedAt time.Time, duration int) models.Match {
	return models.Match{
		Kind:            kind,
		Result:          result,
		PlayedAt:        playedAt,
		DurationMinutes: duration,
	}
}

func ruleByID(t *testing.T, id string) models.Achievement {
	t.Helper()
	rule, ok := Lookup(id)
	require.True(t, ok, "catalog entry %q missing", id)
	return rule
}

func findRow(rows []models.UserAchievement, id string) (models.UserAchievement, bool) {
	for _, row := range rows {
		if row.AchievementID == id {
			return row, true
		}
	}
	return models.UserAchievement{}, false
}

func TestEvaluateFirstMatchUnlocks(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	in := Input{
		Matches: []models.Match{playedMatch(models.ResultLoss, models.KindSingles, now.Add(-time.Hour), 30)},
		Now:     now,
	}

	out := Evaluate(Catalog(), nil, in)

	row, ok := findRow(out.Updated, "first_match")
	require.True(t, ok)
	assert.True(t, row.Unlocked)
	assert.Equal(t, 1, row.Progress)
	require.NotNil(t, row.UnlockedAt)
	assert.Equal(t, now, *row.UnlockedAt)
	assert.Equal(t, now, row.UpdatedAt)

	var unlockedIDs []string
	for _, a := range out.NewlyUnlocked {
		unlockedIDs = append(unlockedIDs, a.ID)
	}
	assert.Contains(t, unlockedIDs, "first_match")
}

func TestEvaluateUnlockedEntriesAreSkipped(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	in := Input{
		Matches: []models.Match{playedMatch(models.ResultWin, models.KindSingles, now, 30)},
		Now:     now,
	}

	first := Evaluate(Catalog(), nil, in)
	require.NotEmpty(t, first.NewlyUnlocked)

	state := make(map[string]models.UserAchievement)
	for _, row := range first.Updated {
		state[row.AchievementID] = row
	}

	second := Evaluate(Catalog(), state, in)

	assert.Empty(t, second.NewlyUnlocked)
	for id, row := range state {
		if !row.Unlocked {
			continue
		}
		_, ok := findRow(second.Updated, id)
		assert.False(t, ok, "unlocked entry %q was re-evaluated", id)
	}
}

func TestEvaluateManualEntriesAreLeftToGrantPath(t *testing.T) {
	now := time.Now()
	in := Input{
		Matches: []models.Match{playedMatch(models.ResultWin, models.KindSingles, now, 15)},
		Now:     now,
	}

	out := Evaluate(Catalog(), nil, in)

	for _, id := range []string{"comeback_king", "perfect_game"} {
		_, ok := findRow(out.Updated, id)
		assert.False(t, ok, "manual entry %q was evaluated", id)
	}
}

func TestEvaluateClampsProgressToTarget(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	matches := make([]models.Match, 0, 15)
	for i := 0; i < 15; i++ {
		matches = append(matches, playedMatch(models.ResultLoss, models.KindSingles, now.Add(-time.Duration(i)*time.Hour), 30))
	}

	out := Evaluate([]models.Achievement{ruleByID(t, "matches_10")}, nil, Input{Matches: matches, Now: now})

	row, ok := findRow(out.Updated, "matches_10")
	require.True(t, ok)
	assert.Equal(t, 10, row.Progress)
}

func TestEvaluatePreservesUserIDFromState(t *testing.T) {
	now := time.Now()
	state := map[string]models.UserAchievement{
		"matches_10": {UserID: 42, AchievementID: "matches_10", Progress: 3},
	}
	in := Input{
		Matches: []models.Match{playedMatch(models.ResultWin, models.KindSingles, now, 30)},
		Now:     now,
	}

	out := Evaluate([]models.Achievement{ruleByID(t, "matches_10")}, state, in)

	row, ok := findRow(out.Updated, "matches_10")
	require.True(t, ok)
	assert.Equal(t, 42, row.UserID)
	assert.Equal(t, 1, row.Progress)
}

func TestWinRateGatedBelowMinimumMatches(t *testing.T) {
	now := time.Now()
	matches := make([]models.Match, 0, 9)
	for i := 0; i < 9; i++ {
		matches = append(matches, playedMatch(models.ResultWin, models.KindSingles, now, 30))
	}

	out := Evaluate([]models.Achievement{ruleByID(t, "win_rate_70")}, nil, Input{Matches: matches, Now: now})

	row, ok := findRow(out.Updated, "win_rate_70")
	require.True(t, ok)
	assert.Equal(t, 0, row.Progress)
	assert.False(t, row.Unlocked)
}

func TestWinRateUnlocksAtMinimumMatches(t *testing.T) {
	now := time.Now()
	var matches []models.Match
	for i := 0; i < 8; i++ {
		matches = append(matches, playedMatch(models.ResultWin, models.KindSingles, now, 30))
	}
	matches = append(matches,
		playedMatch(models.ResultLoss, models.KindSingles, now, 30),
		playedMatch(models.ResultLoss, models.KindSingles, now, 30),
	)

	// 8 of 10 = 80%.
	out := Evaluate([]models.Achievement{ruleByID(t, "win_rate_70"), ruleByID(t, "win_rate_80")}, nil, Input{Matches: matches, Now: now})

	for _, id := range []string{"win_rate_70", "win_rate_80"} {
		row, ok := findRow(out.Updated, id)
		require.True(t, ok)
		assert.True(t, row.Unlocked, id)
	}
}

func TestKindFilteredWinRateIgnoresOtherKinds(t *testing.T) {
	now := time.Now()
	var matches []models.Match
	// 10 won singles plus doubles losses that must not dilute the rate.
	for i := 0; i < 10; i++ {
		matches = append(matches, playedMatch(models.ResultWin, models.KindSingles, now, 30))
	}
	for i := 0; i < 5; i++ {
		matches = append(matches, playedMatch(models.ResultLoss, models.KindDoubles, now, 30))
	}

	out := Evaluate([]models.Achievement{ruleByID(t, "singles_master"), ruleByID(t, "doubles_master")}, nil, Input{Matches: matches, Now: now})

	singles, ok := findRow(out.Updated, "singles_master")
	require.True(t, ok)
	assert.True(t, singles.Unlocked)

	// Only 5 doubles matches: below the gate.
	doubles, ok := findRow(out.Updated, "doubles_master")
	require.True(t, ok)
	assert.Equal(t, 0, doubles.Progress)
}

func TestWinStreakReadsProfileRollup(t *testing.T) {
	now := time.Now()
	in := Input{Stats: models.UserStats{CurrentStreak: 5}, Now: now}

	out := Evaluate([]models.Achievement{ruleByID(t, "win_streak_3"), ruleByID(t, "win_streak_5"), ruleByID(t, "win_streak_10")}, nil, in)

	three, _ := findRow(out.Updated, "win_streak_3")
	five, _ := findRow(out.Updated, "win_streak_5")
	ten, _ := findRow(out.Updated, "win_streak_10")

	assert.True(t, three.Unlocked)
	assert.True(t, five.Unlocked)
	assert.False(t, ten.Unlocked)
	assert.Equal(t, 5, ten.Progress)
}

func TestSpeedDemonRequiresWinWithinLimit(t *testing.T) {
	now := time.Now()
	rule := ruleByID(t, "speed_demon")

	// A fast loss does not count.
	out := Evaluate([]models.Achievement{rule}, nil, Input{
		Matches: []models.Match{playedMatch(models.ResultLoss, models.KindSingles, now, 10)},
		Now:     now,
	})
	row, _ := findRow(out.Updated, "speed_demon")
	assert.False(t, row.Unlocked)

	// An unrecorded duration does not count either.
	out = Evaluate([]models.Achievement{rule}, nil, Input{
		Matches: []models.Match{playedMatch(models.ResultWin, models.KindSingles, now, 0)},
		Now:     now,
	})
	row, _ = findRow(out.Updated, "speed_demon")
	assert.False(t, row.Unlocked)

	out = Evaluate([]models.Achievement{rule}, nil, Input{
		Matches: []models.Match{playedMatch(models.ResultWin, models.KindSingles, now, 18)},
		Now:     now,
	})
	row, _ = findRow(out.Updated, "speed_demon")
	assert.True(t, row.Unlocked)
}

func TestMarathonUsesLongestDuration(t *testing.T) {
	now := time.Now()
	out := Evaluate([]models.Achievement{ruleByID(t, "marathon_match")}, nil, Input{
		Matches: []models.Match{
			playedMatch(models.ResultLoss, models.KindSingles, now, 45),
			playedMatch(models.ResultLoss, models.KindSingles, now, 72),
		},
		Now: now,
	})

	row, _ := findRow(out.Updated, "marathon_match")
	assert.True(t, row.Unlocked)
	assert.Equal(t, 60, row.Progress)
}

func TestDailyRunCountsConsecutiveCalendarDays(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	var matches []models.Match
	// Days -6..-3: a 4-day run, then a gap, then days -1..0.
	for _, offset := range []int{-6, -5, -4, -3, -1, 0} {
		matches = append(matches, playedMatch(models.ResultWin, models.KindSingles, now.AddDate(0, 0, offset), 30))
	}
	// Two matches on the same day extend nothing.
	matches = append(matches, playedMatch(models.ResultLoss, models.KindSingles, now.AddDate(0, 0, -4).Add(time.Hour), 30))

	out := Evaluate([]models.Achievement{ruleByID(t, "daily_player")}, nil, Input{Matches: matches, Now: now})

	row, _ := findRow(out.Updated, "daily_player")
	assert.Equal(t, 4, row.Progress)
	assert.False(t, row.Unlocked)
}

func TestWeeklyAndMonthlyCountsUseCalendarWindows(t *testing.T) {
	// Wednesday; the week started Monday 2025-03-10.
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	var matches []models.Match
	for i := 0; i < 5; i++ {
		matches = append(matches, playedMatch(models.ResultWin, models.KindSingles, now.Add(-time.Duration(i)*time.Hour), 30))
	}
	// Sunday 2025-03-09 is the previous week but the same month.
	matches = append(matches, playedMatch(models.ResultWin, models.KindSingles, time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC), 30))

	out := Evaluate([]models.Achievement{ruleByID(t, "weekly_warrior"), ruleByID(t, "monthly_champion")}, nil, Input{Matches: matches, Now: now})

	weekly, _ := findRow(out.Updated, "weekly_warrior")
	assert.Equal(t, 5, weekly.Progress)
	assert.True(t, weekly.Unlocked)

	monthly, _ := findRow(out.Updated, "monthly_champion")
	assert.Equal(t, 6, monthly.Progress)
}

func TestAllRounderCountsDistinctKindsWon(t *testing.T) {
	now := time.Now()
	rule := ruleByID(t, "all_rounder")

	out := Evaluate([]models.Achievement{rule}, nil, Input{
		Matches: []models.Match{
			playedMatch(models.ResultWin, models.KindSingles, now, 30),
			playedMatch(models.ResultWin, models.KindSingles, now, 30),
			playedMatch(models.ResultWin, models.KindDoubles, now, 30),
			playedMatch(models.ResultLoss, models.KindMixed, now, 30),
		},
		Now: now,
	})
	row, _ := findRow(out.Updated, "all_rounder")
	assert.Equal(t, 2, row.Progress)
	assert.False(t, row.Unlocked)

	out = Evaluate([]models.Achievement{rule}, nil, Input{
		Matches: []models.Match{
			playedMatch(models.ResultWin, models.KindSingles, now, 30),
			playedMatch(models.ResultWin, models.KindDoubles, now, 30),
			playedMatch(models.ResultWin, models.KindMixed, now, 30),
		},
		Now: now,
	})
	row, _ = findRow(out.Updated, "all_rounder")
	assert.True(t, row.Unlocked)
}

func TestSocialCountersDriveSocialRules(t *testing.T) {
	now := time.Now()
	in := Input{Social: SocialCounters{ResultsShared: 3, GoalsSet: 1}, Now: now}

	out := Evaluate([]models.Achievement{ruleByID(t, "goal_setter"), ruleByID(t, "social_sharer")}, nil, in)

	goal, _ := findRow(out.Updated, "goal_setter")
	assert.True(t, goal.Unlocked)

	share, _ := findRow(out.Updated, "social_sharer")
	assert.Equal(t, 3, share.Progress)
	assert.False(t, share.Unlocked)
}

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for _, a := range Catalog() {
		_, dup := seen[a.ID]
		assert.False(t, dup, "duplicate catalog id %q", a.ID)
		seen[a.ID] = struct{}{}
		assert.Greater(t, a.Condition.Target, 0, a.ID)
	}
}

func TestCatalogReturnsACopy(t *testing.T) {
	first := Catalog()
	first[0].Title = "mutated"

	assert.NotEqual(t, "mutated", Catalog()[0].Title)
}
