package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtpulse/badminton-system/models"
	"github.com/lib/pq"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipConflict = errors.New("user is already a member of this circle")
	ErrMembershipInvalid  = errors.New("membership references an unknown circle or user")
)

type MembershipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, membership *models.CircleMembership) error
	Get(ctx context.Context, circleID, userID int) (*models.CircleMembership, error)
	ListByCircle(ctx context.Context, circleID int) ([]models.CircleMembership, error)
	ListByUser(ctx context.Context, userID int) ([]models.CircleMembership, error)
	UpdateRole(ctx context.Context, exec SQLExecutor, circleID, userID int, role models.MembershipRole) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, circleID, userID int, status models.MembershipStatus) error
	Delete(ctx context.Context, exec SQLExecutor, circleID, userID int) error
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

const membershipColumns = `circle_id, user_id, role, status, joined_at, invited_by, profile, permissions`

func (r *postgresMembershipRepository) Create(ctx context.Context, exec SQLExecutor, membership *models.CircleMembership) error {
	profile, permissions, err := marshalMembershipDocs(membership)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO circle_memberships (circle_id, user_id, role, status, invited_by, profile, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING joined_at`

	err = exec.QueryRowContext(ctx, query,
		membership.CircleID,
		membership.UserID,
		membership.Role,
		membership.Status,
		membership.InvitedBy,
		profile,
		permissions,
	).Scan(&membership.JoinedAt)

	return handleMembershipError(err)
}

func (r *postgresMembershipRepository) Get(ctx context.Context, circleID, userID int) (*models.CircleMembership, error) {
	query := `SELECT ` + membershipColumns + ` FROM circle_memberships WHERE circle_id = $1 AND user_id = $2`

	membership, err := scanMembership(r.db.QueryRowContext(ctx, query, circleID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to scan membership (circle %d, user %d): %w", circleID, userID, err)
	}
	return membership, nil
}

func (r *postgresMembershipRepository) ListByCircle(ctx context.Context, circleID int) ([]models.CircleMembership, error) {
	query := `SELECT ` + membershipColumns + ` FROM circle_memberships WHERE circle_id = $1 ORDER BY joined_at ASC`
	return r.queryMemberships(ctx, query, circleID)
}

func (r *postgresMembershipRepository) ListByUser(ctx context.Context, userID int) ([]models.CircleMembership, error) {
	query := `SELECT ` + membershipColumns + ` FROM circle_memberships WHERE user_id = $1 ORDER BY joined_at ASC`
	return r.queryMemberships(ctx, query, userID)
}

func (r *postgresMembershipRepository) UpdateRole(ctx context.Context, exec SQLExecutor, circleID, userID int, role models.MembershipRole) error {
	query := `UPDATE circle_memberships SET role = $1 WHERE circle_id = $2 AND user_id = $3`
	result, err := exec.ExecContext(ctx, query, role, circleID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, circleID, userID int, status models.MembershipStatus) error {
	query := `UPDATE circle_memberships SET status = $1 WHERE circle_id = $2 AND user_id = $3`
	result, err := exec.ExecContext(ctx, query, status, circleID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) Delete(ctx context.Context, exec SQLExecutor, circleID, userID int) error {
	query := `DELETE FROM circle_memberships WHERE circle_id = $1 AND user_id = $2`
	result, err := exec.ExecContext(ctx, query, circleID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) queryMemberships(ctx context.Context, query string, args ...interface{}) ([]models.CircleMembership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]models.CircleMembership, 0)
	for rows.Next() {
		membership, scanErr := scanMembership(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", scanErr)
		}
		memberships = append(memberships, *membership)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during membership rows iteration: %w", err)
	}
	return memberships, nil
}

func scanMembership(s rowScanner) (*models.CircleMembership, error) {
	membership := &models.CircleMembership{}
	var profile, permissions []byte

	err := s.Scan(
		&membership.CircleID,
		&membership.UserID,
		&membership.Role,
		&membership.Status,
		&membership.JoinedAt,
		&membership.InvitedBy,
		&profile,
		&permissions,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(profile, &membership.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership profile: %w", err)
	}
	if err := json.Unmarshal(permissions, &membership.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership permissions: %w", err)
	}
	return membership, nil
}

func marshalMembershipDocs(membership *models.CircleMembership) (profile, permissions []byte, err error) {
	if profile, err = json.Marshal(membership.Profile); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal membership profile: %w", err)
	}
	if permissions, err = json.Marshal(membership.Permissions); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal membership permissions: %w", err)
	}
	return profile, permissions, nil
}

func handleMembershipError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "circle_memberships_pkey":
			return ErrMembershipConflict
		case "circle_memberships_circle_id_fkey", "circle_memberships_user_id_fkey":
			return ErrMembershipInvalid
		}
	}
	return err
}
