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
	ErrCircleNotFound     = errors.New("circle not found")
	ErrCircleNameConflict = errors.New("circle name conflict")
)

type CircleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, circle *models.Circle) error
	GetByID(ctx context.Context, id int) (*models.Circle, error)
	List(ctx context.Context) ([]models.Circle, error)
	Search(ctx context.Context, query string) ([]models.Circle, error)
	Update(ctx context.Context, circle *models.Circle) error
	// AdjustCounters shifts member_count and stats.active_members by the
	// given deltas, flooring both at zero.
	AdjustCounters(ctx context.Context, exec SQLExecutor, id int, memberDelta, activeDelta int) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresCircleRepository struct {
	db *sql.DB
}

func NewPostgresCircleRepository(db *sql.DB) CircleRepository {
	return &postgresCircleRepository{db: db}
}

const circleColumns = `id, name, description, avatar, type, privacy, member_count, max_members,
	       location, tags, created_by, settings, stats, created_at, updated_at`

func (r *postgresCircleRepository) Create(ctx context.Context, exec SQLExecutor, circle *models.Circle) error {
	settings, stats, err := marshalCircleDocs(circle)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO circles
			(name, description, avatar, type, privacy, member_count, max_members, location, tags, created_by, settings, stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err = exec.QueryRowContext(ctx, query,
		circle.Name,
		circle.Description,
		circle.Avatar,
		circle.Type,
		circle.Privacy,
		circle.MemberCount,
		circle.MaxMembers,
		circle.Location,
		pq.Array(circle.Tags),
		circle.CreatedBy,
		settings,
		stats,
	).Scan(&circle.ID, &circle.CreatedAt, &circle.UpdatedAt)

	return r.handleCircleError(err)
}

func (r *postgresCircleRepository) GetByID(ctx context.Context, id int) (*models.Circle, error) {
	query := `SELECT ` + circleColumns + ` FROM circles WHERE id = $1`

	circle, err := scanCircle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCircleNotFound
		}
		return nil, fmt.Errorf("failed to scan circle by id %d: %w", id, err)
	}
	return circle, nil
}

func (r *postgresCircleRepository) List(ctx context.Context) ([]models.Circle, error) {
	query := `SELECT ` + circleColumns + ` FROM circles ORDER BY member_count DESC, id ASC`
	return r.queryCircles(ctx, query)
}

func (r *postgresCircleRepository) Search(ctx context.Context, term string) ([]models.Circle, error) {
	query := `
		SELECT ` + circleColumns + `
		FROM circles
		WHERE name ILIKE $1
		   OR description ILIKE $1
		   OR location ILIKE $1
		   OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE $1)
		ORDER BY member_count DESC, id ASC`
	return r.queryCircles(ctx, query, "%"+term+"%")
}

func (r *postgresCircleRepository) Update(ctx context.Context, circle *models.Circle) error {
	settings, stats, err := marshalCircleDocs(circle)
	if err != nil {
		return err
	}

	query := `
		UPDATE circles
		SET name = $1, description = $2, avatar = $3, type = $4, privacy = $5, max_members = $6,
		    location = $7, tags = $8, settings = $9, stats = $10, updated_at = now()
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		circle.Name,
		circle.Description,
		circle.Avatar,
		circle.Type,
		circle.Privacy,
		circle.MaxMembers,
		circle.Location,
		pq.Array(circle.Tags),
		settings,
		stats,
		circle.ID,
	)
	if err != nil {
		return r.handleCircleError(err)
	}
	return checkAffectedRows(result, ErrCircleNotFound)
}

func (r *postgresCircleRepository) AdjustCounters(ctx context.Context, exec SQLExecutor, id int, memberDelta, activeDelta int) error {
	query := `
		UPDATE circles
		SET member_count = GREATEST(0, member_count + $1),
		    stats = jsonb_set(stats, '{active_members}',
		            to_jsonb(GREATEST(0, COALESCE((stats->>'active_members')::int, 0) + $2))),
		    updated_at = now()
		WHERE id = $3`

	result, err := exec.ExecContext(ctx, query, memberDelta, activeDelta, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCircleNotFound)
}

func (r *postgresCircleRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM circles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCircleNotFound)
}

func (r *postgresCircleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM circles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count circles: %w", err)
	}
	return count, nil
}

func (r *postgresCircleRepository) queryCircles(ctx context.Context, query string, args ...interface{}) ([]models.Circle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query circles: %w", err)
	}
	defer rows.Close()

	circles := make([]models.Circle, 0)
	for rows.Next() {
		circle, scanErr := scanCircle(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan circle row: %w", scanErr)
		}
		circles = append(circles, *circle)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during circle rows iteration: %w", err)
	}
	return circles, nil
}

func scanCircle(s rowScanner) (*models.Circle, error) {
	circle := &models.Circle{}
	var settings, stats []byte

	err := s.Scan(
		&circle.ID,
		&circle.Name,
		&circle.Description,
		&circle.Avatar,
		&circle.Type,
		&circle.Privacy,
		&circle.MemberCount,
		&circle.MaxMembers,
		&circle.Location,
		pq.Array(&circle.Tags),
		&circle.CreatedBy,
		&settings,
		&stats,
		&circle.CreatedAt,
		&circle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settings, &circle.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal circle settings: %w", err)
	}
	if err := json.Unmarshal(stats, &circle.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal circle stats: %w", err)
	}
	return circle, nil
}

func marshalCircleDocs(circle *models.Circle) (settings, stats []byte, err error) {
	if settings, err = json.Marshal(circle.Settings); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal circle settings: %w", err)
	}
	if stats, err = json.Marshal(circle.Stats); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal circle stats: %w", err)
	}
	return settings, stats, nil
}

func (r *postgresCircleRepository) handleCircleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "circles_name_key" {
			return ErrCircleNameConflict
		}
	}
	return err
}
