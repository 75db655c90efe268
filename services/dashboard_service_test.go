package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtpulse/badminton-system/models"
)

func TestDashboardStats(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.add(models.User{ID: 1})
	userRepo.add(models.User{ID: 2})

	matchRepo := newFakeMatchRepo()
	matchRepo.add(models.Match{ID: 1, CreatedBy: 1})
	matchRepo.add(models.Match{ID: 2, CreatedBy: 1})
	matchRepo.add(models.Match{ID: 3, CreatedBy: 2})

	circleRepo := newFakeCircleRepo()
	circleRepo.add(models.Circle{ID: 1, Name: "Club"})

	achievementRepo := newFakeAchievementRepo()
	now := time.Now()
	achievementRepo.rows[achievementKey{1, "first_match"}] = models.UserAchievement{
		UserID: 1, AchievementID: "first_match", Unlocked: true, UnlockedAt: &now,
	}
	achievementRepo.rows[achievementKey{2, "matches_10"}] = models.UserAchievement{
		UserID: 2, AchievementID: "matches_10", Progress: 3,
	}

	svc := NewDashboardService(userRepo, matchRepo, circleRepo, achievementRepo)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.UsersTotal)
	assert.Equal(t, 3, stats.MatchesTotal)
	assert.Equal(t, 1, stats.CirclesTotal)
	// Only unlocked rows count, not in-progress ones.
	assert.Equal(t, 1, stats.UnlockedAchievements)
}

func TestDashboardStatsEmpty(t *testing.T) {
	svc := NewDashboardService(newFakeUserRepo(), newFakeMatchRepo(), newFakeCircleRepo(), newFakeAchievementRepo())

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{}, stats)
}
