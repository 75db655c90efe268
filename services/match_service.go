package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
	"github.com/courtpulse/badminton-system/storage"
	"github.com/google/uuid"
)

// perfectGameScore is the winning score of a shutout game.
const perfectGameScore = 21

type CreateMatchInput struct {
	Kind            models.MatchKind `json:"kind"`
	TeamA           []string         `json:"team_a"`
	TeamB           []string         `json:"team_b"`
	ScoreA          int              `json:"score_a"`
	ScoreB          int              `json:"score_b"`
	DurationMinutes int              `json:"duration_minutes"`
	Venue           string           `json:"venue"`
	PlayedAt        time.Time        `json:"played_at"`
	Notes           string           `json:"notes"`
	Tags            []string         `json:"tags"`
}

type MatchService interface {
	Create(ctx context.Context, creatorID int, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByUser(ctx context.Context, userID int, kind *models.MatchKind) ([]models.Match, error)
	// Confirm records the caller's confirmation on someone else's match.
	// Confirming twice is a no-op.
	Confirm(ctx context.Context, matchID, userID int) error
	// Share records that the creator shared this result, which feeds the
	// social achievement counters.
	Share(ctx context.Context, matchID, userID int) error
	UploadMedia(ctx context.Context, matchID, userID int, contentType string, file io.Reader) (*models.Match, error)
	Delete(ctx context.Context, matchID int, currentUserID int, currentUserRole models.UserRole) error
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	userRepo       repositories.UserRepository
	achievementSvc AchievementService
	uploader       storage.FileUploader
	notifier       Notifier
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	achievementSvc AchievementService,
	uploader storage.FileUploader,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		userRepo:       userRepo,
		achievementSvc: achievementSvc,
		uploader:       uploader,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) Create(ctx context.Context, creatorID int, input CreateMatchInput) (*models.Match, error) {
	if err := validateMatchInput(input); err != nil {
		return nil, err
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", creatorID, err)
	}

	match := buildMatch(creatorID, input)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.Create(ctx, tx, match); err != nil {
		return nil, err
	}

	stats := rollForward(creator.Stats, match.Result)
	if err := s.userRepo.UpdateStats(ctx, tx, creatorID, stats); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match creation: %w", err)
	}

	// Evaluation reads the committed match list, so it runs after the
	// transaction. A failure here leaves the match recorded; the next
	// evaluation run catches up.
	if _, err := s.achievementSvc.EvaluateForUser(ctx, s.db, creatorID); err != nil {
		s.logger.Warn("achievement evaluation failed after match creation",
			slog.Int("user_id", creatorID), slog.Int("match_id", match.ID), slog.Any("error", err))
	}

	if match.Result == models.ResultWin && match.ScoreA >= perfectGameScore && match.ScoreB == 0 {
		if err := s.achievementSvc.Grant(ctx, creatorID, "perfect_game"); err != nil {
			s.logger.Warn("failed to grant perfect game",
				slog.Int("user_id", creatorID), slog.Any("error", err))
		}
	}

	s.notifier.Success(creatorID, "Match recorded", fmt.Sprintf("%d : %d", match.ScoreA, match.ScoreB))
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	s.populateMediaURLs(match)
	return match, nil
}

func (s *matchService) ListByUser(ctx context.Context, userID int, kind *models.MatchKind) ([]models.Match, error) {
	if kind != nil && !validMatchKind(*kind) {
		return nil, ErrMatchKindInvalid
	}
	matches, err := s.matchRepo.ListByUser(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for user %d: %w", userID, err)
	}
	for i := range matches {
		s.populateMediaURLs(&matches[i])
	}
	return matches, nil
}

func (s *matchService) Confirm(ctx context.Context, matchID, userID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.CreatedBy == userID {
		return ErrSelfConfirmation
	}
	if match.IsConfirmedBy(userID) {
		return nil
	}

	if err := s.matchRepo.AddConfirmation(ctx, matchID, userID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	s.notifier.Info(match.CreatedBy, "Match confirmed", "An opponent confirmed your match record")
	return nil
}

func (s *matchService) Share(ctx context.Context, matchID, userID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.CreatedBy != userID {
		return ErrForbiddenOperation
	}
	return s.achievementSvc.RecordResultShared(ctx, userID)
}

func (s *matchService) UploadMedia(ctx context.Context, matchID, userID int, contentType string, file io.Reader) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.CreatedBy != userID {
		return nil, ErrForbiddenOperation
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("matches/%d/%s%s", matchID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload match media: %w", err)
	}

	video := isVideoContentType(contentType)
	var photos, videos []string
	if video {
		videos = []string{key}
	} else {
		photos = []string{key}
	}
	if err := s.matchRepo.AppendMedia(ctx, matchID, photos, videos); err != nil {
		return nil, err
	}

	if video {
		match.Media.Videos = append(match.Media.Videos, key)
	} else {
		match.Media.Photos = append(match.Media.Photos, key)
	}
	s.populateMediaURLs(match)
	return match, nil
}

func (s *matchService) Delete(ctx context.Context, matchID int, currentUserID int, currentUserRole models.UserRole) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.CreatedBy != currentUserID && currentUserRole != models.RoleAdmin {
		return ErrForbiddenOperation
	}

	if err := s.matchRepo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	// The rollup on the creator's row now overcounts; rebuild it from
	// the matches that remain.
	if err := s.recomputeStats(ctx, match.CreatedBy); err != nil {
		s.logger.Warn("failed to recompute stats after match deletion",
			slog.Int("user_id", match.CreatedBy), slog.Any("error", err))
	}
	return nil
}

func (s *matchService) recomputeStats(ctx context.Context, userID int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	matches, err := s.matchRepo.ListByUser(ctx, userID, nil)
	if err != nil {
		return err
	}

	stats := rebuildStats(matches)
	stats.WeeklyGoal = user.Stats.WeeklyGoal
	stats.Trends = user.Stats.Trends
	return s.userRepo.UpdateStats(ctx, s.db, userID, stats)
}

func (s *matchService) populateMediaURLs(match *models.Match) {
	if s.uploader == nil {
		return
	}
	for i, key := range match.Media.Photos {
		if url := s.uploader.GetPublicURL(key); url != "" {
			match.Media.Photos[i] = url
		}
	}
	for i, key := range match.Media.Videos {
		if url := s.uploader.GetPublicURL(key); url != "" {
			match.Media.Videos[i] = url
		}
	}
}

func validMatchKind(kind models.MatchKind) bool {
	switch kind {
	case models.KindSingles, models.KindDoubles, models.KindMixed:
		return true
	}
	return false
}

func validateMatchInput(input CreateMatchInput) error {
	if !validMatchKind(input.Kind) {
		return ErrMatchKindInvalid
	}
	if input.ScoreA < 0 || input.ScoreB < 0 || input.ScoreA == input.ScoreB {
		return ErrMatchScoreInvalid
	}

	perSide := 2
	if input.Kind == models.KindSingles {
		perSide = 1
	}
	if len(input.TeamA) != perSide || len(input.TeamB) != perSide {
		return fmt.Errorf("%w: %s needs %d player(s) per side", ErrMatchRosterInvalid, input.Kind, perSide)
	}
	for _, name := range append(append([]string{}, input.TeamA...), input.TeamB...) {
		if name == "" {
			return fmt.Errorf("%w: empty player name", ErrMatchRosterInvalid)
		}
	}
	return nil
}

// buildMatch derives the winner side and the creator's result. Team A
// is always the creator's side, so the record's result is win exactly
// when team A outscored team B.
func buildMatch(creatorID int, input CreateMatchInput) *models.Match {
	winner := models.SideTeamB
	result := models.ResultLoss
	if input.ScoreA > input.ScoreB {
		winner = models.SideTeamA
		result = models.ResultWin
	}

	duration := input.DurationMinutes
	if duration < 0 {
		duration = 0
	}

	playedAt := input.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	return &models.Match{
		Kind:            input.Kind,
		TeamA:           input.TeamA,
		TeamB:           input.TeamB,
		ScoreA:          input.ScoreA,
		ScoreB:          input.ScoreB,
		Winner:          winner,
		Result:          result,
		DurationMinutes: duration,
		Venue:           input.Venue,
		PlayedAt:        playedAt,
		Notes:           input.Notes,
		Tags:            input.Tags,
		CreatedBy:       creatorID,
	}
}

// rollForward applies one new result to an up-to-date rollup.
func rollForward(stats models.UserStats, result models.MatchResult) models.UserStats {
	stats.TotalMatches++
	if result == models.ResultWin {
		stats.TotalWins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.BestStreak {
			stats.BestStreak = stats.CurrentStreak
		}
	} else {
		stats.CurrentStreak = 0
	}
	stats.WinRate = winRate(stats.TotalWins, stats.TotalMatches)
	return stats
}

// rebuildStats recomputes the rollup from scratch. Matches arrive
// newest first, the order ListByUser returns them in.
func rebuildStats(matches []models.Match) models.UserStats {
	var stats models.UserStats
	stats.TotalMatches = len(matches)

	streak := 0
	for i := len(matches) - 1; i >= 0; i-- { // oldest first
		if matches[i].Result == models.ResultWin {
			stats.TotalWins++
			streak++
			if streak > stats.BestStreak {
				stats.BestStreak = streak
			}
		} else {
			streak = 0
		}
	}
	stats.CurrentStreak = streak
	stats.WinRate = winRate(stats.TotalWins, stats.TotalMatches)
	return stats
}

// winRate is a fraction in [0,1], the unit the stats rollup and the
// aggregator share.
func winRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}
