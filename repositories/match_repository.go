package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/courtpulse/badminton-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchCreatorInvalid = errors.New("match creator conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByUser(ctx context.Context, userID int, kind *models.MatchKind) ([]models.Match, error)
	AddConfirmation(ctx context.Context, matchID, userID int) error
	AppendMedia(ctx context.Context, matchID int, photos, videos []string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, kind, team_a, team_b, score_a, score_b, winner, result, duration_minutes,
	       venue, played_at, notes, tags, photos, videos, created_by, confirmed_by, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(kind, team_a, team_b, score_a, score_b, winner, result, duration_minutes,
			 venue, played_at, notes, tags, photos, videos, created_by, confirmed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.Kind,
		pq.Array(match.TeamA),
		pq.Array(match.TeamB),
		match.ScoreA,
		match.ScoreB,
		match.Winner,
		match.Result,
		match.DurationMinutes,
		match.Venue,
		match.PlayedAt,
		match.Notes,
		pq.Array(match.Tags),
		pq.Array(match.Media.Photos),
		pq.Array(match.Media.Videos),
		match.CreatedBy,
		pq.Array(match.ConfirmedBy),
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByUser(ctx context.Context, userID int, kindFilter *models.MatchKind) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE created_by = $1`)

	args := []interface{}{userID}
	if kindFilter != nil {
		queryBuilder.WriteString(" AND kind = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *kindFilter)
	}
	queryBuilder.WriteString(" ORDER BY played_at DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for user %d: %w", userID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatchRows(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, *match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) AddConfirmation(ctx context.Context, matchID, userID int) error {
	// array_append only when not already present keeps the call idempotent.
	query := `
		UPDATE matches
		SET confirmed_by = array_append(confirmed_by, $1)
		WHERE id = $2 AND NOT ($1 = ANY(confirmed_by))`

	result, err := r.db.ExecContext(ctx, query, int64(userID), matchID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Either the match is missing or the user already confirmed;
		// distinguish so callers can report accurately.
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
	}
	return nil
}

func (r *postgresMatchRepository) AppendMedia(ctx context.Context, matchID int, photos, videos []string) error {
	query := `
		UPDATE matches
		SET photos = photos || $1, videos = videos || $2
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, pq.Array(photos), pq.Array(videos), matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row *sql.Row) (*models.Match, error) { return scanMatchFrom(row) }
func scanMatchRows(rows *sql.Rows) (*models.Match, error) { return scanMatchFrom(rows) }

func scanMatchFrom(s rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := s.Scan(
		&match.ID,
		&match.Kind,
		pq.Array(&match.TeamA),
		pq.Array(&match.TeamB),
		&match.ScoreA,
		&match.ScoreB,
		&match.Winner,
		&match.Result,
		&match.DurationMinutes,
		&match.Venue,
		&match.PlayedAt,
		&match.Notes,
		pq.Array(&match.Tags),
		pq.Array(&match.Media.Photos),
		pq.Array(&match.Media.Videos),
		&match.CreatedBy,
		pq.Array(&match.ConfirmedBy),
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "matches_created_by_fkey" {
			return ErrMatchCreatorInvalid
		}
	}
	return err
}
