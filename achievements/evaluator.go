package achievements

import (
	"sort"
	"time"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/stats"
)

// winRateMinMatches gates win_rate rules: with fewer qualifying matches
// the rate is too noisy to reward, so progress stays at zero.
const winRateMinMatches = 10

// SocialCounters are the event-driven tallies for social rules. They
// are incremented by explicit user actions, never derived from match
// history.
type SocialCounters struct {
	ResultsShared int `json:"results_shared"`
	GoalsSet      int `json:"goals_set"`
}

// Input is everything one evaluation run reads. Evaluation is a pure
// computation over it; no I/O and no error states.
type Input struct {
	Matches []models.Match
	Stats   models.UserStats
	Social  SocialCounters
	Now     time.Time
}

// Outcome carries the recomputed state rows and, separately, the
// definitions that crossed their target during this run.
type Outcome struct {
	Updated       []models.UserAchievement
	NewlyUnlocked []models.Achievement
}

// Evaluate recomputes progress for every non-manual catalog entry.
// Entries already unlocked in state are skipped, which makes repeated
// runs with unchanged inputs idempotent: an unlocked entry never
// reappears in NewlyUnlocked. Progress is always clamped to
// [0, target]. Manual entries are owned by the grant path and left
// untouched. UserID on the returned rows is copied from the existing
// state row when present; the caller fills it in otherwise.
func Evaluate(rules []models.Achievement, state map[string]models.UserAchievement, in Input) Outcome {
	var out Outcome

	for _, rule := range rules {
		prev := state[rule.ID]
		if prev.Unlocked || rule.Manual {
			continue
		}

		progress := progressFor(rule.Condition, in)
		if progress < 0 {
			progress = 0
		}
		if progress > rule.Condition.Target {
			progress = rule.Condition.Target
		}

		row := models.UserAchievement{
			UserID:        prev.UserID,
			AchievementID: rule.ID,
			Progress:      progress,
			UpdatedAt:     in.Now,
		}
		if progress >= rule.Condition.Target {
			unlockedAt := in.Now
			row.Unlocked = true
			row.UnlockedAt = &unlockedAt
			out.NewlyUnlocked = append(out.NewlyUnlocked, rule)
		}
		out.Updated = append(out.Updated, row)
	}
	return out
}

func progressFor(cond models.UnlockCondition, in Input) int {
	switch cond.Type {
	case models.RuleMatchesCount:
		return countInPeriod(in.Matches, cond.Period, in.Now)

	case models.RuleWinStreak:
		// Trusts the profile rollup; the streak is not recomputed from
		// match history here.
		return in.Stats.CurrentStreak

	case models.RuleWinRate:
		return winRatePercent(in.Matches, cond.Kind)

	case models.RuleDuration:
		if cond.AtMost {
			return quickWinProgress(in.Matches, cond.Target)
		}
		return longestDuration(in.Matches)

	case models.RuleFrequency:
		return longestDailyRun(in.Matches, in.Now.Location())

	case models.RuleImprovement:
		return kindsWon(in.Matches)

	case models.RuleSocial:
		switch cond.Event {
		case models.EventResultShared:
			return in.Social.ResultsShared
		case models.EventGoalSet:
			return in.Social.GoalsSet
		}
	}
	return 0
}

func countInPeriod(matches []models.Match, period models.RulePeriod, now time.Time) int {
	var since time.Time
	switch period {
	case models.PeriodDay:
		since = stats.StartOfDay(now)
	case models.PeriodWeek:
		since = stats.StartOfWeek(now)
	case models.PeriodMonth:
		since = stats.StartOfMonth(now)
	default: // all_time
		return len(matches)
	}

	count := 0
	for _, m := range matches {
		if !m.PlayedAt.Before(since) {
			count++
		}
	}
	return count
}

func winRatePercent(matches []models.Match, kind models.MatchKind) int {
	total, wins := 0, 0
	for _, m := range matches {
		if kind != "" && m.Kind != kind {
			continue
		}
		total++
		if m.Result == models.ResultWin {
			wins++
		}
	}
	if total < winRateMinMatches {
		return 0
	}
	rate := float64(wins) / float64(total) * 100
	return int(rate + 0.5)
}

// quickWinProgress reports the full target once any match was won
// within the limit, zero otherwise. A zero duration means the duration
// was not recorded and never counts as a quick win.
func quickWinProgress(matches []models.Match, limitMinutes int) int {
	for _, m := range matches {
		if m.Result == models.ResultWin && m.DurationMinutes > 0 && m.DurationMinutes <= limitMinutes {
			return limitMinutes
		}
	}
	return 0
}

func longestDuration(matches []models.Match) int {
	longest := 0
	for _, m := range matches {
		if m.DurationMinutes > longest {
			longest = m.DurationMinutes
		}
	}
	return longest
}

// longestDailyRun finds the longest run of consecutive calendar days
// with at least one match.
func longestDailyRun(matches []models.Match, loc *time.Location) int {
	if len(matches) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{}, len(matches))
	for _, m := range matches {
		seen[stats.StartOfDay(m.PlayedAt.In(loc))] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func kindsWon(matches []models.Match) int {
	won := make(map[models.MatchKind]struct{}, 3)
	for _, m := range matches {
		if m.Result == models.ResultWin {
			won[m.Kind] = struct{}{}
		}
	}
	return len(won)
}
