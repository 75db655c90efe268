package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
)

const (
	inviteTokenLength = 16 // bytes, 32 hex characters
	inviteDuration    = 7 * 24 * time.Hour
	inviteMaxAttempts = 3
)

var ErrInviteTokenGeneration = errors.New("failed to generate unique invite token")

type InviteService interface {
	CreateInvite(ctx context.Context, circleID, currentUserID int) (*models.CircleInvite, error)
	// AcceptInvite joins the caller to the invite's circle as an active
	// member regardless of the circle's privacy setting.
	AcceptInvite(ctx context.Context, token string, currentUserID int) (*models.CircleMembership, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	db             *sql.DB
	inviteRepo     repositories.InviteRepository
	circleRepo     repositories.CircleRepository
	membershipRepo repositories.MembershipRepository
	logger         *slog.Logger
}

func NewInviteService(
	db *sql.DB,
	inviteRepo repositories.InviteRepository,
	circleRepo repositories.CircleRepository,
	membershipRepo repositories.MembershipRepository,
	logger *slog.Logger,
) InviteService {
	return &inviteService{
		db:             db,
		inviteRepo:     inviteRepo,
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *inviteService) CreateInvite(ctx context.Context, circleID, currentUserID int) (*models.CircleInvite, error) {
	membership, err := s.membershipRepo.Get(ctx, circleID, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrOwnerActionRequired
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if !membership.Permissions.CanInvite &&
		membership.Role != models.RoleOwner && membership.Role != models.RoleCircleAdmin {
		return nil, ErrForbiddenOperation
	}

	for attempt := 0; attempt < inviteMaxAttempts; attempt++ {
		token, err := generateSecureToken(inviteTokenLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteTokenGeneration, err)
		}

		invite := &models.CircleInvite{
			CircleID:  circleID,
			Token:     token,
			CreatedBy: currentUserID,
			ExpiresAt: time.Now().Add(inviteDuration),
		}

		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, repositories.ErrInviteTokenConflict) {
			return nil, fmt.Errorf("failed to create invite: %w", err)
		}
		// token collision, retry with a fresh one
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrInviteTokenGeneration, inviteMaxAttempts)
}

func (s *inviteService) AcceptInvite(ctx context.Context, token string, currentUserID int) (*models.CircleMembership, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by token: %w", err)
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	circle, err := s.circleRepo.GetByID(ctx, invite.CircleID)
	if err != nil {
		if errors.Is(err, repositories.ErrCircleNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, fmt.Errorf("failed to get circle %d: %w", invite.CircleID, err)
	}
	if circle.MaxMembers > 0 && circle.MemberCount >= circle.MaxMembers {
		return nil, ErrCircleFull
	}

	if existing, err := s.membershipRepo.Get(ctx, circle.ID, currentUserID); err == nil {
		if existing.Status == models.MembershipPending {
			return nil, ErrMembershipPending
		}
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	membership := &models.CircleMembership{
		CircleID:  circle.ID,
		UserID:    currentUserID,
		Role:      models.RoleMember,
		Status:    models.MembershipActive,
		InvitedBy: &invite.CreatedBy,
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
	if err := s.circleRepo.AdjustCounters(ctx, tx, circle.ID, 1, 1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invite acceptance: %w", err)
	}

	// The member is already in; a failed cleanup only leaves a token
	// for the expiry sweep to collect.
	if err := s.inviteRepo.Delete(ctx, invite.ID); err != nil {
		s.logger.Warn("failed to delete accepted invite",
			slog.Int("invite_id", invite.ID), slog.Any("error", err))
	}
	return membership, nil
}

func (s *inviteService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.inviteRepo.DeleteExpired(ctx)
}
