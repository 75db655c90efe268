package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
	"github.com/courtpulse/badminton-system/storage"
	"github.com/google/uuid"
)

type UpdateProfileInput struct {
	Nickname  *string              `json:"nickname,omitempty"`
	Level     *int                 `json:"level,omitempty"`
	Equipment []models.Equipment   `json:"equipment,omitempty"`
	Settings  *models.UserSettings `json:"settings,omitempty"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	// SetWeeklyGoal stores the target and counts the goal-setting event
	// toward social achievements.
	SetWeeklyGoal(ctx context.Context, userID int, goal int) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	db             *sql.DB
	userRepo       repositories.UserRepository
	achievementSvc AchievementService
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewUserService(
	db *sql.DB,
	userRepo repositories.UserRepository,
	achievementSvc AchievementService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) UserService {
	return &userService{
		db:             db,
		userRepo:       userRepo,
		achievementSvc: achievementSvc,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		if *input.Nickname == "" {
			return nil, ErrNicknameRequired
		}
		user.Nickname = *input.Nickname
	}
	if input.Level != nil {
		if *input.Level < 1 {
			return nil, fmt.Errorf("%w: level must be at least 1", ErrValidationFailed)
		}
		user.Level = *input.Level
	}
	if input.Equipment != nil {
		user.Equipment = input.Equipment
	}
	if input.Settings != nil {
		user.Settings = *input.Settings
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) SetWeeklyGoal(ctx context.Context, userID int, goal int) (*models.User, error) {
	if goal < 0 {
		return nil, fmt.Errorf("%w: weekly goal cannot be negative", ErrValidationFailed)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := user.Stats
	stats.WeeklyGoal = goal

	if err := s.userRepo.UpdateStats(ctx, s.db, userID, stats); err != nil {
		return nil, err
	}
	user.Stats = stats

	if err := s.achievementSvc.RecordGoalSet(ctx, userID); err != nil {
		s.logger.Warn("failed to record goal-set event",
			slog.Int("user_id", userID), slog.Any("error", err))
	}

	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	if isVideoContentType(contentType) {
		return nil, ErrUnsupportedMediaType
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		return nil, err
	}

	if oldKey != nil && *oldKey != "" {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.Int("user_id", userID), slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	user.AvatarKey = &key
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) getUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}
