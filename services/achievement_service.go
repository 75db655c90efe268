package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtpulse/badminton-system/achievements"
	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
)

// socialCountersSetting is the user_settings blob the evaluator's
// social rules read from.
const socialCountersSetting = "social_counters"

type AchievementService interface {
	ListForUser(ctx context.Context, userID int) ([]models.AchievementStatus, error)
	// EvaluateForUser recomputes all rule-driven achievements from the
	// user's current match history and stats, persists the state, and
	// notifies the user about anything newly unlocked.
	EvaluateForUser(ctx context.Context, exec repositories.SQLExecutor, userID int) ([]models.Achievement, error)
	// Grant unlocks a single achievement directly, bypassing rule
	// evaluation. Used for manual awards and event-driven unlocks.
	Grant(ctx context.Context, userID int, achievementID string) error
	RecordResultShared(ctx context.Context, userID int) error
	RecordGoalSet(ctx context.Context, userID int) error
}

type achievementService struct {
	db              *sql.DB
	achievementRepo repositories.AchievementRepository
	userRepo        repositories.UserRepository
	matchRepo       repositories.MatchRepository
	settingsRepo    repositories.SettingsRepository
	notifier        Notifier
	logger          *slog.Logger
}

func NewAchievementService(
	db *sql.DB,
	achievementRepo repositories.AchievementRepository,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	settingsRepo repositories.SettingsRepository,
	notifier Notifier,
	logger *slog.Logger,
) AchievementService {
	return &achievementService{
		db:              db,
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		matchRepo:       matchRepo,
		settingsRepo:    settingsRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

func (s *achievementService) ListForUser(ctx context.Context, userID int) ([]models.AchievementStatus, error) {
	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog := achievements.Catalog()
	statuses := make([]models.AchievementStatus, 0, len(catalog))
	for _, definition := range catalog {
		status := models.AchievementStatus{Achievement: definition}
		if row, ok := state[definition.ID]; ok {
			status.Progress = row.Progress
			status.Unlocked = row.Unlocked
			status.UnlockedAt = row.UnlockedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *achievementService) EvaluateForUser(ctx context.Context, exec repositories.SQLExecutor, userID int) ([]models.Achievement, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	matches, err := s.matchRepo.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for user %d: %w", userID, err)
	}

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	social, err := s.loadSocialCounters(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcome := achievements.Evaluate(achievements.Catalog(), state, achievements.Input{
		Matches: matches,
		Stats:   user.Stats,
		Social:  social,
		Now:     time.Now(),
	})

	for i := range outcome.Updated {
		row := outcome.Updated[i]
		row.UserID = userID
		if err := s.achievementRepo.Upsert(ctx, exec, &row); err != nil {
			return nil, err
		}
	}

	for _, unlocked := range outcome.NewlyUnlocked {
		s.notifier.AchievementUnlocked(userID, unlocked)
	}
	return outcome.NewlyUnlocked, nil
}

func (s *achievementService) Grant(ctx context.Context, userID int, achievementID string) error {
	definition, ok := achievements.Lookup(achievementID)
	if !ok {
		return ErrAchievementNotFound
	}

	state, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}
	if row, ok := state[achievementID]; ok && row.Unlocked {
		return nil // already unlocked, granting again is a no-op
	}

	now := time.Now()
	row := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		Progress:      definition.Condition.Target,
		Unlocked:      true,
		UnlockedAt:    &now,
	}
	if err := s.achievementRepo.Upsert(ctx, s.db, &row); err != nil {
		return err
	}

	s.notifier.AchievementUnlocked(userID, definition)
	return nil
}

func (s *achievementService) RecordResultShared(ctx context.Context, userID int) error {
	return s.bumpSocialCounter(ctx, userID, func(c *achievements.SocialCounters) { c.ResultsShared++ })
}

func (s *achievementService) RecordGoalSet(ctx context.Context, userID int) error {
	return s.bumpSocialCounter(ctx, userID, func(c *achievements.SocialCounters) { c.GoalsSet++ })
}

func (s *achievementService) bumpSocialCounter(ctx context.Context, userID int, bump func(*achievements.SocialCounters)) error {
	counters, err := s.loadSocialCounters(ctx, userID)
	if err != nil {
		return err
	}
	bump(&counters)

	if err := s.settingsRepo.Put(ctx, s.db, userID, socialCountersSetting, counters); err != nil {
		return err
	}

	// A counter bump can cross a social rule's target, so re-evaluate.
	if _, err := s.EvaluateForUser(ctx, s.db, userID); err != nil {
		return err
	}
	return nil
}

func (s *achievementService) loadState(ctx context.Context, userID int) (map[string]models.UserAchievement, error) {
	rows, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement state for user %d: %w", userID, err)
	}
	state := make(map[string]models.UserAchievement, len(rows))
	for _, row := range rows {
		state[row.AchievementID] = row
	}
	return state, nil
}

func (s *achievementService) loadSocialCounters(ctx context.Context, userID int) (achievements.SocialCounters, error) {
	var counters achievements.SocialCounters
	err := s.settingsRepo.Get(ctx, userID, socialCountersSetting, &counters)
	if err != nil && !errors.Is(err, repositories.ErrSettingNotFound) {
		return counters, fmt.Errorf("failed to load social counters for user %d: %w", userID, err)
	}
	return counters, nil
}
