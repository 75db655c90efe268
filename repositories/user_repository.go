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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserNicknameConflict = errors.New("user nickname conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStats(ctx context.Context, exec SQLExecutor, userID int, stats models.UserStats) error
	UpdateAvatarKey(ctx context.Context, userID int, key *string) error
	Count(ctx context.Context) (int, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, nickname, email, password_hash, role, level, stats, equipment, settings, avatar_key, created_at, updated_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	stats, equipment, settings, err := marshalUserDocs(user)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (nickname, email, password_hash, role, level, stats, equipment, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		user.Nickname,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Level,
		stats,
		equipment,
		settings,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return r.handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by id %d: %w", id, err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by email: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	stats, equipment, settings, err := marshalUserDocs(user)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET nickname = $1, email = $2, level = $3, stats = $4, equipment = $5, settings = $6, updated_at = now()
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		user.Nickname,
		user.Email,
		user.Level,
		stats,
		equipment,
		settings,
		user.ID,
	)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateStats(ctx context.Context, exec SQLExecutor, userID int, stats models.UserStats) error {
	doc, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal user stats: %w", err)
	}

	result, err := exec.ExecContext(ctx,
		`UPDATE users SET stats = $1, updated_at = now() WHERE id = $2`, doc, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, userID int, key *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar_key = $1, updated_at = now() WHERE id = $2`, key, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *postgresUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var stats, equipment, settings []byte

	err := row.Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Level,
		&stats,
		&equipment,
		&settings,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stats, &user.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user stats: %w", err)
	}
	if err := json.Unmarshal(equipment, &user.Equipment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user equipment: %w", err)
	}
	if err := json.Unmarshal(settings, &user.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user settings: %w", err)
	}
	return user, nil
}

func marshalUserDocs(user *models.User) (stats, equipment, settings []byte, err error) {
	if user.Equipment == nil {
		user.Equipment = []models.Equipment{}
	}
	if stats, err = json.Marshal(user.Stats); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal user stats: %w", err)
	}
	if equipment, err = json.Marshal(user.Equipment); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal user equipment: %w", err)
	}
	if settings, err = json.Marshal(user.Settings); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal user settings: %w", err)
	}
	return stats, equipment, settings, nil
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrUserEmailConflict
		case "users_nickname_key":
			return ErrUserNicknameConflict
		}
	}
	return err
}
