package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

type StatTrends struct {
	WeeklyTrend      float64 `json:"weekly_trend"`
	MonthlyTrend     float64 `json:"monthly_trend"`
	SkillImprovement float64 `json:"skill_improvement"`
}

// UserStats is the rollup snapshot kept on the user row. The match
// service maintains the WinRate == TotalWins/TotalMatches invariant on
// every recorded match; anyone patching stats directly must do the same.
type UserStats struct {
	TotalMatches  int        `json:"total_matches"`
	TotalWins     int        `json:"total_wins"`
	WinRate       float64    `json:"win_rate"`
	CurrentStreak int        `json:"current_streak"`
	BestStreak    int        `json:"best_streak"`
	WeeklyGoal    int        `json:"weekly_goal"`
	Trends        StatTrends `json:"trends"`
}

type EquipmentType string

const (
	EquipmentRacket   EquipmentType = "racket"
	EquipmentShoes    EquipmentType = "shoes"
	EquipmentClothing EquipmentType = "clothing"
)

type Equipment struct {
	ID           string        `json:"id"`
	Type         EquipmentType `json:"type"`
	Brand        string        `json:"brand"`
	Model        string        `json:"model"`
	PurchaseDate time.Time     `json:"purchase_date"`
	UsageCount   int           `json:"usage_count"`
}

type NotificationPrefs struct {
	MatchReminder bool `json:"match_reminder"`
	WeeklyReport  bool `json:"weekly_report"`
	Achievements  bool `json:"achievements"`
}

type UserSettings struct {
	Privacy       string            `json:"privacy"` // public, private
	Notifications NotificationPrefs `json:"notifications"`
	Theme         string            `json:"theme"` // light, dark, auto
}

type User struct {
	ID           int          `json:"id" db:"id"`
	Nickname     string       `json:"nickname" db:"nickname"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Role         UserRole     `json:"role" db:"role"`
	Level        int          `json:"level" db:"level"`
	Stats        UserStats    `json:"stats" db:"stats"`
	Equipment    []Equipment  `json:"equipment" db:"equipment"`
	Settings     UserSettings `json:"settings" db:"settings"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
