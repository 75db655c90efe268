package models

import "time"

type AchievementCategory string

const (
	CategoryMilestone AchievementCategory = "milestone"
	CategorySkill     AchievementCategory = "skill"
	CategoryFrequency AchievementCategory = "frequency"
	CategoryChallenge AchievementCategory = "challenge"
	CategorySocial    AchievementCategory = "social"
)

type RuleType string

const (
	RuleMatchesCount RuleType = "matches_count"
	RuleWinStreak    RuleType = "win_streak"
	RuleWinRate      RuleType = "win_rate"
	RuleDuration     RuleType = "duration"
	RuleFrequency    RuleType = "frequency"
	RuleImprovement  RuleType = "improvement"
	RuleSocial       RuleType = "social"
)

type RulePeriod string

const (
	PeriodDay     RulePeriod = "day"
	PeriodWeek    RulePeriod = "week"
	PeriodMonth   RulePeriod = "month"
	PeriodYear    RulePeriod = "year"
	PeriodAllTime RulePeriod = "all_time"
)

// SocialEvent names a discrete user action counted for social rules.
type SocialEvent string

const (
	EventResultShared SocialEvent = "result_shared"
	EventGoalSet      SocialEvent = "goal_set"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// UnlockCondition describes when an achievement unlocks. Kind scopes
// win_rate rules to a single match kind; Event selects the counter for
// social rules; AtMost flips duration rules from "at least target
// minutes" to "won within target minutes".
type UnlockCondition struct {
	Type   RuleType    `json:"type"`
	Target int         `json:"target"`
	Period RulePeriod  `json:"period,omitempty"`
	Kind   MatchKind   `json:"kind,omitempty"`
	Event  SocialEvent `json:"event,omitempty"`
	AtMost bool        `json:"at_most,omitempty"`
}

type Reward struct {
	Points int    `json:"points"`
	Badge  string `json:"badge"`
	Title  string `json:"title,omitempty"`
}

// Achievement is an immutable rule definition from the catalog. Unlock
// state lives in UserAchievement rows, never on the definition itself.
// Manual entries are granted through explicit events and skipped by the
// evaluator.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category"`
	Condition   UnlockCondition     `json:"condition"`
	Reward      Reward              `json:"reward"`
	Rarity      Rarity              `json:"rarity"`
	Manual      bool                `json:"manual,omitempty"`
}

// UserAchievement is the per-user unlock state for one catalog entry.
// Invariants: 0 <= Progress <= Condition.Target, and Unlocked implies
// UnlockedAt is set.
type UserAchievement struct {
	UserID        int        `json:"user_id" db:"user_id"`
	AchievementID string     `json:"achievement_id" db:"achievement_id"`
	Progress      int        `json:"progress" db:"progress"`
	Unlocked      bool       `json:"unlocked" db:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty" db:"unlocked_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// AchievementStatus is the merged view served to clients: the catalog
// definition plus the requesting user's progress.
type AchievementStatus struct {
	Achievement
	Progress   int        `json:"progress"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
