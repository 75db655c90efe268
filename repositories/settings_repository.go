package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository stores small named JSON blobs per user, e.g. the
// social counters the achievement evaluator reads.
type SettingsRepository interface {
	Get(ctx context.Context, userID int, name string, out interface{}) error
	Put(ctx context.Context, exec SQLExecutor, userID int, name string, value interface{}) error
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

func (r *postgresSettingsRepository) Get(ctx context.Context, userID int, name string, out interface{}) error {
	var raw []byte
	query := `SELECT value FROM user_settings WHERE user_id = $1 AND name = $2`
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to read setting %q: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal setting %q: %w", name, err)
	}
	return nil
}

func (r *postgresSettingsRepository) Put(ctx context.Context, exec SQLExecutor, userID int, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %q: %w", name, err)
	}

	query := `
		INSERT INTO user_settings (user_id, name, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`

	if _, err := exec.ExecContext(ctx, query, userID, name, raw); err != nil {
		return fmt.Errorf("failed to store setting %q: %w", name, err)
	}
	return nil
}
