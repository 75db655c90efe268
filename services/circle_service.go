package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtpulse/badminton-system/leaderboard"
	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
)

type CreateCircleInput struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Avatar      string                `json:"avatar"`
	Type        models.CircleType     `json:"type"`
	Privacy     models.CirclePrivacy  `json:"privacy"`
	MaxMembers  int                   `json:"max_members"`
	Location    string                `json:"location"`
	Tags        []string              `json:"tags"`
	Settings    models.CircleSettings `json:"settings"`
}

type UpdateCircleInput struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Avatar      *string                `json:"avatar,omitempty"`
	Privacy     *models.CirclePrivacy  `json:"privacy,omitempty"`
	MaxMembers  *int                   `json:"max_members,omitempty"`
	Location    *string                `json:"location,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Settings    *models.CircleSettings `json:"settings,omitempty"`
}

type CircleService interface {
	Create(ctx context.Context, creatorID int, input CreateCircleInput) (*models.Circle, error)
	GetByID(ctx context.Context, circleID int) (*models.Circle, error)
	List(ctx context.Context) ([]models.Circle, error)
	Search(ctx context.Context, term string) ([]models.Circle, error)
	Update(ctx context.Context, circleID, currentUserID int, input UpdateCircleInput) (*models.Circle, error)
	// Delete removes the circle and, via cascade, its memberships.
	// Only the current owner or a site admin may do this.
	Delete(ctx context.Context, circleID, currentUserID int, currentUserRole models.UserRole) error
	// Join adds the caller to the circle. Approval-required circles get
	// a pending membership that does not count toward member totals.
	Join(ctx context.Context, circleID, userID int) (*models.CircleMembership, error)
	Leave(ctx context.Context, circleID, userID int) error
	ApproveMember(ctx context.Context, circleID, approverID, userID int) error
	RemoveMember(ctx context.Context, circleID, actorID, userID int) error
	TransferOwnership(ctx context.Context, circleID, ownerID, newOwnerID int) error
	Members(ctx context.Context, circleID int) ([]models.CircleMembership, error)
	ListForUser(ctx context.Context, userID int) ([]models.CircleMembership, error)
	// Leaderboard ranks the circle's active members by match points.
	Leaderboard(ctx context.Context, circleID int) ([]leaderboard.Entry, error)
}

type circleService struct {
	db             *sql.DB
	circleRepo     repositories.CircleRepository
	membershipRepo repositories.MembershipRepository
	userRepo       repositories.UserRepository
	notifier       Notifier
	logger         *slog.Logger
}

func NewCircleService(
	db *sql.DB,
	circleRepo repositories.CircleRepository,
	membershipRepo repositories.MembershipRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) CircleService {
	return &circleService{
		db:             db,
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *circleService) Create(ctx context.Context, creatorID int, input CreateCircleInput) (*models.Circle, error) {
	if input.Name == "" {
		return nil, ErrCircleNameRequired
	}
	if input.MaxMembers < 0 {
		return nil, fmt.Errorf("%w: max members cannot be negative", ErrValidationFailed)
	}

	circle := &models.Circle{
		Name:        input.Name,
		Description: input.Description,
		Avatar:      input.Avatar,
		Type:        input.Type,
		Privacy:     input.Privacy,
		MemberCount: 1,
		MaxMembers:  input.MaxMembers,
		Location:    input.Location,
		Tags:        input.Tags,
		CreatedBy:   creatorID,
		Settings:    input.Settings,
		Stats:       models.CircleStats{ActiveMembers: 1},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.circleRepo.Create(ctx, tx, circle); err != nil {
		if errors.Is(err, repositories.ErrCircleNameConflict) {
			return nil, ErrCircleNameConflict
		}
		return nil, fmt.Errorf("failed to create circle: %w", err)
	}

	// The creator is the sole owner. Ownership moves only through
	// TransferOwnership, so a circle never ends up with two owners.
	owner := &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   creatorID,
		Role:     models.RoleOwner,
		Status:   models.MembershipActive,
		Permissions: models.MemberPermissions{
			CanInvite:       true,
			CanCreateEvents: true,
			CanModerate:     true,
		},
	}
	if err := s.membershipRepo.Create(ctx, tx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit circle creation: %w", err)
	}
	return circle, nil
}

func (s *circleService) GetByID(ctx context.Context, circleID int) (*models.Circle, error) {
	return s.getCircle(ctx, circleID)
}

func (s *circleService) List(ctx context.Context) ([]models.Circle, error) {
	circles, err := s.circleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles: %w", err)
	}
	return circles, nil
}

func (s *circleService) Search(ctx context.Context, term string) ([]models.Circle, error) {
	if term == "" {
		return s.List(ctx)
	}
	circles, err := s.circleRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search circles: %w", err)
	}
	return circles, nil
}

func (s *circleService) Update(ctx context.Context, circleID, currentUserID int, input UpdateCircleInput) (*models.Circle, error) {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, circleID, currentUserID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrCircleNameRequired
		}
		circle.Name = *input.Name
	}
	if input.Description != nil {
		circle.Description = *input.Description
	}
	if input.Avatar != nil {
		circle.Avatar = *input.Avatar
	}
	if input.Privacy != nil {
		circle.Privacy = *input.Privacy
	}
	if input.MaxMembers != nil {
		if *input.MaxMembers < 0 {
			return nil, fmt.Errorf("%w: max members cannot be negative", ErrValidationFailed)
		}
		circle.MaxMembers = *input.MaxMembers
	}
	if input.Location != nil {
		circle.Location = *input.Location
	}
	if input.Tags != nil {
		circle.Tags = input.Tags
	}
	if input.Settings != nil {
		circle.Settings = *input.Settings
	}

	if err := s.circleRepo.Update(ctx, circle); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCircleNotFound):
			return nil, ErrCircleNotFound
		case errors.Is(err, repositories.ErrCircleNameConflict):
			return nil, ErrCircleNameConflict
		}
		return nil, fmt.Errorf("failed to update circle %d: %w", circleID, err)
	}
	return circle, nil
}

func (s *circleService) Delete(ctx context.Context, circleID, currentUserID int, currentUserRole models.UserRole) error {
	if _, err := s.getCircle(ctx, circleID); err != nil {
		return err
	}

	if currentUserRole != models.RoleAdmin {
		membership, err := s.getMembership(ctx, circleID, currentUserID)
		if err != nil {
			if errors.Is(err, ErrMembershipNotFound) {
				return ErrOwnerActionRequired
			}
			return err
		}
		if membership.Role != models.RoleOwner {
			return ErrOwnerActionRequired
		}
	}

	if err := s.circleRepo.Delete(ctx, circleID); err != nil {
		if errors.Is(err, repositories.ErrCircleNotFound) {
			return ErrCircleNotFound
		}
		return fmt.Errorf("failed to delete circle %d: %w", circleID, err)
	}
	return nil
}

func (s *circleService) Join(ctx context.Context, circleID, userID int) (*models.CircleMembership, error) {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	existing, err := s.membershipRepo.Get(ctx, circleID, userID)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if existing != nil {
		if existing.Status == models.MembershipPending {
			return nil, ErrMembershipPending
		}
		return nil, ErrAlreadyMember
	}

	if circle.Privacy == models.PrivacyInviteOnly {
		return nil, ErrCircleInviteOnly
	}
	if circle.MaxMembers > 0 && circle.MemberCount >= circle.MaxMembers {
		return nil, ErrCircleFull
	}

	status := models.MembershipActive
	if circle.Privacy == models.PrivacyApprovalRequired {
		status = models.MembershipPending
	}

	membership := &models.CircleMembership{
		CircleID: circleID,
		UserID:   userID,
		Role:     models.RoleMember,
		Status:   status,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.membershipRepo.Create(ctx, tx, membership); err != nil {
		if errors.Is(err, repositories.ErrMembershipConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if status == models.MembershipActive {
		if err := s.circleRepo.AdjustCounters(ctx, tx, circleID, 1, 1); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}

	if status == models.MembershipPending {
		s.notifier.Info(circle.CreatedBy, "Join request", "A player asked to join "+circle.Name)
	}
	return membership, nil
}

func (s *circleService) Leave(ctx context.Context, circleID, userID int) error {
	membership, err := s.getMembership(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if membership.Role == models.RoleOwner {
		return ErrOwnerMustTransfer
	}
	return s.removeMembership(ctx, circleID, membership)
}

func (s *circleService) ApproveMember(ctx context.Context, circleID, approverID, userID int) error {
	if err := s.requireModerator(ctx, circleID, approverID); err != nil {
		return err
	}

	membership, err := s.getMembership(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if membership.Status != models.MembershipPending {
		return ErrAlreadyMember
	}

	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return err
	}
	if circle.MaxMembers > 0 && circle.MemberCount >= circle.MaxMembers {
		return ErrCircleFull
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.membershipRepo.UpdateStatus(ctx, tx, circleID, userID, models.MembershipActive); err != nil {
		return err
	}
	if err := s.circleRepo.AdjustCounters(ctx, tx, circleID, 1, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}

	s.notifier.Success(userID, "Request approved", "You joined "+circle.Name)
	return nil
}

func (s *circleService) RemoveMember(ctx context.Context, circleID, actorID, userID int) error {
	if actorID != userID {
		if err := s.requireModerator(ctx, circleID, actorID); err != nil {
			return err
		}
	}

	membership, err := s.getMembership(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if membership.Role == models.RoleOwner {
		return ErrOwnerMustTransfer
	}
	return s.removeMembership(ctx, circleID, membership)
}

func (s *circleService) TransferOwnership(ctx context.Context, circleID, ownerID, newOwnerID int) error {
	owner, err := s.getMembership(ctx, circleID, ownerID)
	if err != nil {
		return err
	}
	if owner.Role != models.RoleOwner {
		return ErrOwnerActionRequired
	}

	successor, err := s.getMembership(ctx, circleID, newOwnerID)
	if err != nil {
		return err
	}
	if successor.Status != models.MembershipActive {
		return ErrMembershipPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Demote before promote, so the one-owner rule holds even if the
	// second update fails and the transaction rolls back.
	if err := s.membershipRepo.UpdateRole(ctx, tx, circleID, ownerID, models.RoleCircleAdmin); err != nil {
		return err
	}
	if err := s.membershipRepo.UpdateRole(ctx, tx, circleID, newOwnerID, models.RoleOwner); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ownership transfer: %w", err)
	}

	s.notifier.Info(newOwnerID, "Ownership transferred", "You now own this circle")
	return nil
}

func (s *circleService) Members(ctx context.Context, circleID int) ([]models.CircleMembership, error) {
	if _, err := s.getCircle(ctx, circleID); err != nil {
		return nil, err
	}
	members, err := s.membershipRepo.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of circle %d: %w", circleID, err)
	}
	return members, nil
}

func (s *circleService) ListForUser(ctx context.Context, userID int) ([]models.CircleMembership, error) {
	memberships, err := s.membershipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships of user %d: %w", userID, err)
	}
	return memberships, nil
}

func (s *circleService) Leaderboard(ctx context.Context, circleID int) ([]leaderboard.Entry, error) {
	members, err := s.Members(ctx, circleID)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboard.Entry, 0, len(members))
	for _, member := range members {
		if member.Status != models.MembershipActive {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, member.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get user %d: %w", member.UserID, err)
		}
		entries = append(entries, leaderboard.Entry{
			UserID:   user.ID,
			Nickname: user.Nickname,
			Level:    user.Level,
			Matches:  user.Stats.TotalMatches,
			Wins:     user.Stats.TotalWins,
			WinRate:  user.Stats.WinRate,
			Points:   leaderboard.Score(user.Stats.TotalMatches, user.Stats.TotalWins),
		})
	}
	return leaderboard.Rank(entries), nil
}

func (s *circleService) removeMembership(ctx context.Context, circleID int, membership *models.CircleMembership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.membershipRepo.Delete(ctx, tx, circleID, membership.UserID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}

	// Pending members never counted, so only active departures shrink
	// the totals. The SQL floors both counters at zero.
	if membership.Status == models.MembershipActive {
		if err := s.circleRepo.AdjustCounters(ctx, tx, circleID, -1, -1); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit membership removal: %w", err)
	}
	return nil
}

func (s *circleService) requireModerator(ctx context.Context, circleID, userID int) error {
	membership, err := s.getMembership(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return ErrOwnerActionRequired
		}
		return err
	}
	if membership.Role != models.RoleOwner && membership.Role != models.RoleCircleAdmin {
		return ErrOwnerActionRequired
	}
	return nil
}

func (s *circleService) getCircle(ctx context.Context, circleID int) (*models.Circle, error) {
	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, repositories.ErrCircleNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, fmt.Errorf("failed to get circle %d: %w", circleID, err)
	}
	return circle, nil
}

func (s *circleService) getMembership(ctx context.Context, circleID, userID int) (*models.CircleMembership, error) {
	membership, err := s.membershipRepo.Get(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership (circle %d, user %d): %w", circleID, userID, err)
	}
	return membership, nil
}
