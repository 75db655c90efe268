package services

import (
	"context"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	userRepo        repositories.UserRepository
	matchRepo       repositories.MatchRepository
	circleRepo      repositories.CircleRepository
	achievementRepo repositories.AchievementRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	circleRepo repositories.CircleRepository,
	achievementRepo repositories.AchievementRepository,
) DashboardService {
	return &dashboardService{
		userRepo:        userRepo,
		matchRepo:       matchRepo,
		circleRepo:      circleRepo,
		achievementRepo: achievementRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.UsersTotal, err = s.userRepo.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.MatchesTotal, err = s.matchRepo.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.CirclesTotal, err = s.circleRepo.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.UnlockedAchievements, err = s.achievementRepo.CountUnlocked(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
