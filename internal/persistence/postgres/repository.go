// Package postgres stores activities in a single Postgres table with the roster
// held in a text[] column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/extracurricular/internal/domain"
)

const uniqueViolation = "23505"

var _ domain.ActivityRepository = (*Repository)(nil)

// Repository provides Postgres-backed persistence for activities.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// Option customises a Repository.
type Option func(*Repository)

// WithTable overrides the default "activities" table name.
func WithTable(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.table = name
		}
	}
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool, opts ...Option) *Repository {
	r := &Repository{pool: pool, table: "activities"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) ident() string {
	return pgx.Identifier{r.table}.Sanitize()
}

// EnsureSchema creates the activities table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf(createActivitiesTable, r.ident())); err != nil {
		return fmt.Errorf("create activities table: %w", err)
	}
	return nil
}

// Count returns the number of stored activities.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM "+r.ident()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// Insert creates one activity row.
func (r *Repository) Insert(ctx context.Context, activity domain.Activity) error {
	activity = activity.Clone()
	stmt := `INSERT INTO ` + r.ident() + ` (name, description, schedule, max_participants, participants)
        VALUES ($1,$2,$3,$4,$5)`

	_, err := r.pool.Exec(ctx, stmt,
		activity.Name,
		activity.Description,
		activity.Schedule,
		activity.MaxParticipants,
		activity.Participants,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, activity.Name)
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Get retrieves an activity by name.
func (r *Repository) Get(ctx context.Context, name string) (*domain.Activity, error) {
	query := `SELECT name, description, schedule, max_participants, participants
        FROM ` + r.ident() + ` WHERE name=$1`

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &activity, nil
}

// ListAll returns every activity ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Activity, error) {
	query := `SELECT name, description, schedule, max_participants, participants
        FROM ` + r.ident() + ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		results = append(results, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return results, nil
}

// AppendParticipant appends email unless the roster already contains it.
func (r *Repository) AppendParticipant(ctx context.Context, name, email string) (bool, error) {
	stmt := `UPDATE ` + r.ident() + ` SET participants = array_append(participants, $2::text)
        WHERE name=$1 AND NOT ($2::text = ANY(participants))`

	tag, err := r.pool.Exec(ctx, stmt, name, email)
	if err != nil {
		return false, fmt.Errorf("append participant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveParticipant removes email when the roster contains it.
func (r *Repository) RemoveParticipant(ctx context.Context, name, email string) (bool, error) {
	stmt := `UPDATE ` + r.ident() + ` SET participants = array_remove(participants, $2::text)
        WHERE name=$1 AND $2::text = ANY(participants)`

	tag, err := r.pool.Exec(ctx, stmt, name, email)
	if err != nil {
		return false, fmt.Errorf("remove participant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	if err := row.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants, &a.Participants); err != nil {
		return domain.Activity{}, err
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	return a, nil
}
