// Package achievements holds the fixed achievement catalog and the
// evaluator that recomputes per-user progress against it. The catalog
// is immutable rule data; all mutable unlock state is carried in
// models.UserAchievement rows keyed by user.
package achievements

import "github.com/courtpulse/badminton-system/models"

var catalog = []models.Achievement{
	// Milestones.
	{
		ID:          "first_match",
		Title:       "First Serve",
		Description: "Record your first match",
		Icon:        "🏸",
		Category:    models.CategoryMilestone,
		Condition:   models.UnlockCondition{Type: models.RuleMatchesCount, Target: 1, Period: models.PeriodAllTime},
		Reward:      models.Reward{Points: 50, Badge: "Rookie", Title: "Newcomer"},
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "matches_10",
		Title:       "Getting Into It",
		Description: "Record 10 matches in total",
		Icon:        "🎯",
		Category:    models.CategoryMilestone,
		Condition:   models.UnlockCondition{Type: models.RuleMatchesCount, Target: 10, Period: models.PeriodAllTime},
		Reward:      models.Reward{Points: 100, Badge: "Regular", Title: "Enthusiast"},
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "matches_50",
		Title:       "Seasoned Player",
		Description: "Record 50 matches in total",
		Icon:        "🏅",
		Category:    models.CategoryMilestone,
		Condition:   models.UnlockCondition{Type: models.RuleMatchesCount, Target: 50, Period: models.PeriodAllTime},
		Reward:      models.Reward{Points: 300, Badge: "Veteran", Title: "Court Regular"},
		Rarity:      models.RarityRare,
	},
	{
		ID:          "matches_100",
		Title:       "Centurion",
		Description: "Record 100 matches in total",
		Icon:        "👑",
		Category:    models.CategoryMilestone,
		Condition:   models.UnlockCondition{Type: models.RuleMatchesCount, Target: 100, Period: models.PeriodAllTime},
		Reward:      models.Reward{Points: 500, Badge: "Centurion", Title: "Court Expert"},
		Rarity:      models.RarityEpic,
	},

	// Win streaks.
	{
		ID:          "win_streak_3",
		Title:       "On a Roll",
		Description: "Win 3 matches in a row",
		Icon:        "🔥",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinStreak, Target: 3},
		Reward:      models.Reward{Points: 80, Badge: "Streaker"},
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "win_streak_5",
		Title:       "Unstoppable",
		Description: "Win 5 matches in a row",
		Icon:        "⚡",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinStreak, Target: 5},
		Reward:      models.Reward{Points: 150, Badge: "Streak King"},
		Rarity:      models.RarityRare,
	},
	{
		ID:          "win_streak_10",
		Title:       "Invincible",
		Description: "Win 10 matches in a row",
		Icon:        "🌟",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinStreak, Target: 10},
		Reward:      models.Reward{Points: 400, Badge: "Warlord", Title: "Undefeated Legend"},
		Rarity:      models.RarityLegendary,
	},

	// Win rate. Rates only count once at least 10 qualifying matches
	// have been played.
	{
		ID:          "win_rate_70",
		Title:       "Consistent",
		Description: "Reach a 70% win rate (at least 10 matches)",
		Icon:        "📊",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinRate, Target: 70},
		Reward:      models.Reward{Points: 120, Badge: "Steady Hand"},
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "win_rate_80",
		Title:       "Dominant",
		Description: "Reach an 80% win rate (at least 10 matches)",
		Icon:        "🎖️",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinRate, Target: 80},
		Reward:      models.Reward{Points: 250, Badge: "Ace", Title: "Technical Master"},
		Rarity:      models.RarityRare,
	},

	// Playing habits.
	{
		ID:          "daily_player",
		Title:       "Daily Grind",
		Description: "Play at least one match on 7 consecutive days",
		Icon:        "📅",
		Category:    models.CategoryFrequency,
		Condition:   models.UnlockCondition{Type: models.RuleFrequency, Target: 7, Period: models.PeriodDay},
		Reward:      models.Reward{Points: 200, Badge: "Daily Warrior"},
		Rarity:      models.RarityRare,
	},
	{
		ID:          "weekly_warrior",
		Title:       "Weekly Warrior",
		Description: "Play 5 matches within one calendar week",
		Icon:        "🗓️",
		Category:    models.CategoryFrequency,
		Condition:   models.UnlockCondition{Type: models.RuleMatchesCount, Target: 5, Period: models.PeriodWeek},
		Reward:      models.Reward{Points: 100, Badge: "Weekend Warrior"},
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "monthly_champion",
		Title:       "Monthly Champion",
		Description: "Play 20 matches within one calendar month",
		Icon:        "🏆",
		Category:    models.CategoryFrequency,
		Condition:   models.UnlockCondition{Type: models.RuleMatchesCount, Target: 20, Period: models.PeriodMonth},
		Reward:      models.Reward{Points: 300, Badge: "Monthly Champion", Title: "Sports Devotee"},
		Rarity:      models.RarityEpic,
	},

	// Endurance.
	{
		ID:          "marathon_match",
		Title:       "Marathon",
		Description: "Play a single match longer than 60 minutes",
		Icon:        "⏱️",
		Category:    models.CategoryChallenge,
		Condition:   models.UnlockCondition{Type: models.RuleDuration, Target: 60},
		Reward:      models.Reward{Points: 150, Badge: "Iron Lungs"},
		Rarity:      models.RarityRare,
	},
	{
		ID:          "speed_demon",
		Title:       "Blitz",
		Description: "Win a match within 20 minutes",
		Icon:        "⚡",
		Category:    models.CategoryChallenge,
		Condition:   models.UnlockCondition{Type: models.RuleDuration, Target: 20, AtMost: true},
		Reward:      models.Reward{Points: 100, Badge: "Quick Finisher"},
		Rarity:      models.RarityCommon,
	},

	// All-round skill.
	{
		ID:          "all_rounder",
		Title:       "All-Rounder",
		Description: "Win at least once in singles, doubles and mixed",
		Icon:        "🎯",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleImprovement, Target: 3},
		Reward:      models.Reward{Points: 200, Badge: "All-Round King", Title: "Complete Player"},
		Rarity:      models.RarityRare,
	},
	{
		ID:          "singles_master",
		Title:       "Singles Master",
		Description: "Reach an 85% singles win rate (at least 10 singles matches)",
		Icon:        "👤",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinRate, Target: 85, Kind: models.KindSingles},
		Reward:      models.Reward{Points: 250, Badge: "Singles King"},
		Rarity:      models.RarityEpic,
	},
	{
		ID:          "doubles_master",
		Title:       "Doubles Master",
		Description: "Reach an 85% doubles win rate (at least 10 doubles matches)",
		Icon:        "👥",
		Category:    models.CategorySkill,
		Condition:   models.UnlockCondition{Type: models.RuleWinRate, Target: 85, Kind: models.KindDoubles},
		Reward:      models.Reward{Points: 250, Badge: "Doubles King"},
		Rarity:      models.RarityEpic,
	},

	// Specials granted by discrete events, not derived from history.
	{
		ID:          "comeback_king",
		Title:       "Comeback King",
		Description: "Win a match after trailing by 10 points",
		Icon:        "🔄",
		Category:    models.CategoryChallenge,
		Condition:   models.UnlockCondition{Type: models.RuleImprovement, Target: 1},
		Reward:      models.Reward{Points: 300, Badge: "Comeback King", Title: "Never Give Up"},
		Rarity:      models.RarityEpic,
		Manual:      true,
	},
	{
		ID:          "perfect_game",
		Title:       "Perfect Game",
		Description: "Win a game 21:0",
		Icon:        "💎",
		Category:    models.CategoryChallenge,
		Condition:   models.UnlockCondition{Type: models.RuleImprovement, Target: 1},
		Reward:      models.Reward{Points: 500, Badge: "Perfectionist", Title: "Flawless"},
		Rarity:      models.RarityLegendary,
		Manual:      true,
	},

	// App usage.
	{
		ID:          "goal_setter",
		Title:       "Goal Setter",
		Description: "Set your first personal goal",
		Icon:        "🎯",
		Category:    models.CategorySocial,
		Condition:   models.UnlockCondition{Type: models.RuleSocial, Target: 1, Event: models.EventGoalSet},
		Reward:      models.Reward{Points: 50, Badge: "Planner"},
		Rarity:      models.RarityCommon,
	},
	{
		ID:          "social_sharer",
		Title:       "Sharing Star",
		Description: "Share 5 match results",
		Icon:        "📤",
		Category:    models.CategorySocial,
		Condition:   models.UnlockCondition{Type: models.RuleSocial, Target: 5, Event: models.EventResultShared},
		Reward:      models.Reward{Points: 100, Badge: "Sharing King"},
		Rarity:      models.RarityCommon,
	},
}

// Catalog returns a copy of the full rule catalog. Callers may reorder
// or filter the returned slice freely.
func Catalog() []models.Achievement {
	out := make([]models.Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry with the given id.
func Lookup(id string) (models.Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return models.Achievement{}, false
}
