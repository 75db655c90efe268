package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtpulse/badminton-system/models"
)

// AchievementRepository persists per-user unlock state. The achievement
// definitions themselves live in the achievements package catalog.
type AchievementRepository interface {
	ListByUser(ctx context.Context, userID int) ([]models.UserAchievement, error)
	Upsert(ctx context.Context, exec SQLExecutor, state *models.UserAchievement) error
	CountUnlocked(ctx context.Context) (int, error)
}

type postgresAchievementRepository struct {
	db *sql.DB
}

func NewPostgresAchievementRepository(db *sql.DB) AchievementRepository {
	return &postgresAchievementRepository{db: db}
}

func (r *postgresAchievementRepository) ListByUser(ctx context.Context, userID int) ([]models.UserAchievement, error) {
	query := `
		SELECT user_id, achievement_id, progress, unlocked, unlocked_at, updated_at
		FROM user_achievements
		WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user achievements: %w", err)
	}
	defer rows.Close()

	states := make([]models.UserAchievement, 0)
	for rows.Next() {
		var state models.UserAchievement
		err = rows.Scan(
			&state.UserID,
			&state.AchievementID,
			&state.Progress,
			&state.Unlocked,
			&state.UnlockedAt,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user achievement row: %w", err)
		}
		states = append(states, state)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during user achievement rows iteration: %w", err)
	}
	return states, nil
}

// Upsert writes the evaluated state. An already unlocked row is never
// regressed back to locked.
func (r *postgresAchievementRepository) Upsert(ctx context.Context, exec SQLExecutor, state *models.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, progress, unlocked, unlocked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id, achievement_id) DO UPDATE
		SET progress    = EXCLUDED.progress,
		    unlocked    = user_achievements.unlocked OR EXCLUDED.unlocked,
		    unlocked_at = COALESCE(user_achievements.unlocked_at, EXCLUDED.unlocked_at),
		    updated_at  = now()`

	_, err := exec.ExecContext(ctx, query,
		state.UserID,
		state.AchievementID,
		state.Progress,
		state.Unlocked,
		state.UnlockedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user achievement %q: %w", state.AchievementID, err)
	}
	return nil
}

func (r *postgresAchievementRepository) CountUnlocked(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM user_achievements WHERE unlocked`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unlocked achievements: %w", err)
	}
	return count, nil
}
