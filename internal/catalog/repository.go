package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

// Repository provides access to the rate reference tables.
type Repository interface {
	ListBlp(ctx context.Context, includeInactive bool) ([]BlpRate, error)
	ListBlnp(ctx context.Context, includeInactive bool) ([]BlnpRate, error)
	GetBlp(ctx context.Context, id int64) (*BlpRate, error)
	GetBlnp(ctx context.Context, id int64) (*BlnpRate, error)
	CreateBlp(ctx context.Context, rate BlpRate) (int64, error)
	CreateBlnp(ctx context.Context, rate BlnpRate) (int64, error)
	UpdateBlp(ctx context.Context, rate BlpRate) error
	UpdateBlnp(ctx context.Context, rate BlnpRate) error
	SetBlpActive(ctx context.Context, id int64, active bool) error
	SetBlnpActive(ctx context.Context, id int64, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListBlp(ctx context.Context, includeInactive bool) ([]BlpRate, error) {
	query := `
		SELECT id, specification, reference, monthly_rate, daily_rate, is_active, created_at, updated_at
		FROM blp_rates`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list blp: %w", err)
	}
	defer rows.Close()

	var entries []BlpRate
	for rows.Next() {
		entry, err := scanBlp(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) ListBlnp(ctx context.Context, includeInactive bool) ([]BlnpRate, error) {
	query := `
		SELECT id, item_description, reference, fixed_value, is_at_cost, note, is_active, created_at, updated_at
		FROM blnp_rates`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list blnp: %w", err)
	}
	defer rows.Close()

	var entries []BlnpRate
	for rows.Next() {
		entry, err := scanBlnp(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) GetBlp(ctx context.Context, id int64) (*BlpRate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, specification, reference, monthly_rate, daily_rate, is_active, created_at, updated_at
		FROM blp_rates WHERE id = $1`, id)
	entry, err := scanBlp(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) GetBlnp(ctx context.Context, id int64) (*BlnpRate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, item_description, reference, fixed_value, is_at_cost, note, is_active, created_at, updated_at
		FROM blnp_rates WHERE id = $1`, id)
	entry, err := scanBlnp(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) CreateBlp(ctx context.Context, rate BlpRate) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blp_rates (specification, reference, monthly_rate, daily_rate, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		rate.Specification, rate.Reference, rate.MonthlyRate, rate.DailyRate, rate.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, mapUniqueViolation(err, "uq_blp_reference")
	}
	return id, nil
}

func (r *repository) CreateBlnp(ctx context.Context, rate BlnpRate) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blnp_rates (item_description, reference, fixed_value, is_at_cost, note, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		rate.ItemDescription, rate.Reference, rate.FixedValue, rate.IsAtCost, textOrNil(rate.Note), rate.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, mapUniqueViolation(err, "uq_blnp_reference")
	}
	return id, nil
}

func (r *repository) UpdateBlp(ctx context.Context, rate BlpRate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE blp_rates
		SET specification = $2, reference = $3, monthly_rate = $4, daily_rate = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1`,
		rate.ID, rate.Specification, rate.Reference, rate.MonthlyRate, rate.DailyRate, rate.IsActive)
	if err != nil {
		return mapUniqueViolation(err, "uq_blp_reference")
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateBlnp(ctx context.Context, rate BlnpRate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE blnp_rates
		SET item_description = $2, reference = $3, fixed_value = $4, is_at_cost = $5, note = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1`,
		rate.ID, rate.ItemDescription, rate.Reference, rate.FixedValue, rate.IsAtCost, textOrNil(rate.Note), rate.IsActive)
	if err != nil {
		return mapUniqueViolation(err, "uq_blnp_reference")
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetBlpActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE blp_rates SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetBlnpActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE blnp_rates SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanBlp(row pgx.Row) (BlpRate, error) {
	var entry BlpRate
	var monthly, daily pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&entry.ID, &entry.Specification, &entry.Reference, &monthly, &daily, &entry.IsActive, &createdAt, &updatedAt); err != nil {
		return BlpRate{}, err
	}
	if monthly.Valid {
		f, _ := monthly.Float64Value()
		entry.MonthlyRate = f.Float64
	}
	if daily.Valid {
		f, _ := daily.Float64Value()
		entry.DailyRate = f.Float64
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		entry.UpdatedAt = updatedAt.Time
	}
	return entry, nil
}

func scanBlnp(row pgx.Row) (BlnpRate, error) {
	var entry BlnpRate
	var fixed pgtype.Numeric
	var note pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&entry.ID, &entry.ItemDescription, &entry.Reference, &fixed, &entry.IsAtCost, &note, &entry.IsActive, &createdAt, &updatedAt); err != nil {
		return BlnpRate{}, err
	}
	if fixed.Valid {
		f, _ := fixed.Float64Value()
		entry.FixedValue = f.Float64
	}
	if note.Valid {
		val := note.String
		entry.Note = &val
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		entry.UpdatedAt = updatedAt.Time
	}
	return entry, nil
}

const uniqueViolationCode = "23505"

func mapUniqueViolation(err error, constraint string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint {
		return fmt.Errorf("%w: rate already registered", shared.ErrConflict)
	}
	return err
}

func textOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
