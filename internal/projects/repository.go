package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

// Repository provides access to the projects table.
type Repository interface {
	List(ctx context.Context, req ListProjectsRequest) ([]Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	Create(ctx context.Context, p Project) (int64, error)
	Update(ctx context.Context, p Project) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, req ListProjectsRequest) ([]Project, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	if !req.IncludeInactive {
		conditions = append(conditions, "is_active")
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		conditions = append(conditions, "(code ILIKE $1 OR name ILIKE $1 OR client_name ILIKE $1)")
		args = append(args, "%"+q+"%")
	}

	query := `
		SELECT id, code, name, client_name, is_active, created_at, updated_at
		FROM projects
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("projects: list: %w", err)
	}
	defer rows.Close()

	var entries []Project
	for rows.Next() {
		entry, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, code, name, client_name, is_active, created_at, updated_at
		FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Project) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO projects (code, name, client_name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.Code, p.Name, p.ClientName, p.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, mapUniqueViolation(err, "uq_projects_code")
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, p Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET name = $2, client_name = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.ClientName, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.ClientName, &p.IsActive, &createdAt, &updatedAt); err != nil {
		return Project{}, err
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

const uniqueViolationCode = "23505"

func mapUniqueViolation(err error, constraint string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint {
		return fmt.Errorf("%w: project code already in use", shared.ErrConflict)
	}
	return err
}
