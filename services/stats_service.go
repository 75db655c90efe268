package services

import (
	"context"
	"fmt"
	"time"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
	"github.com/courtpulse/badminton-system/stats"
)

const trendDays = 7

// StatsOverview is the aggregate view served on the stats endpoint.
type StatsOverview struct {
	Summary   stats.Summary            `json:"summary"`
	ByKind    map[models.MatchKind]int `json:"by_kind"`
	Trend     []stats.TrendBucket      `json:"trend"`
	Today     stats.Summary            `json:"today"`
	Durations stats.DurationExtremes   `json:"durations"`
}

type StatsService interface {
	Overview(ctx context.Context, userID int) (*StatsOverview, error)
	Summary(ctx context.Context, userID int, kind *models.MatchKind) (stats.Summary, error)
}

type statsService struct {
	matchRepo repositories.MatchRepository
}

func NewStatsService(matchRepo repositories.MatchRepository) StatsService {
	return &statsService{matchRepo: matchRepo}
}

func (s *statsService) Overview(ctx context.Context, userID int) (*StatsOverview, error) {
	matches, err := s.matchRepo.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for user %d: %w", userID, err)
	}

	now := time.Now()
	return &StatsOverview{
		Summary:   stats.Overall(matches),
		ByKind:    stats.CountByKind(matches),
		Trend:     stats.DailyTrend(matches, now, trendDays),
		Today:     stats.Overall(stats.Today(matches, now)),
		Durations: stats.Extremes(matches),
	}, nil
}

func (s *statsService) Summary(ctx context.Context, userID int, kind *models.MatchKind) (stats.Summary, error) {
	matches, err := s.matchRepo.ListByUser(ctx, userID, kind)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("failed to list matches for user %d: %w", userID, err)
	}
	return stats.Overall(matches), nil
}
