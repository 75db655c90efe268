package models

type DashboardStats struct {
	UsersTotal           int `json:"users_total"`
	MatchesTotal         int `json:"matches_total"`
	CirclesTotal         int `json:"circles_total"`
	UnlockedAchievements int `json:"unlocked_achievements"`
}
