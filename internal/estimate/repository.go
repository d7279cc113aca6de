package estimate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prakira-pmo/prakira-pmo/internal/platform/db"
	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

// Repository provides persistence for estimates and their lines.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Estimate, error)
	List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error)
	ListIDsByStatus(ctx context.Context, status EstimateStatus) ([]int64, error)
	Create(ctx context.Context, e Estimate) (int64, error)
	UpdateHeader(ctx context.Context, e Estimate) error
	ReplaceLines(ctx context.Context, estimateID int64, lines []EstimateLine) error
	Delete(ctx context.Context, id int64) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const estimateColumns = `
	id, project_id, doc_number, title, status, notes,
	markup_pct, contingency_pct, discount_pct, ppn_pct, escalation_pct,
	working_days_per_month, round_to_thousand,
	subtotal, escalation, overhead, contingency, discount, dpp, ppn, grand_total,
	created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Estimate, error) {
	row := r.db.QueryRow(ctx, `SELECT`+estimateColumns+` FROM estimates WHERE id = $1`, id)
	e, err := scanEstimate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, estimate_id, kind, reference_id, description, unit, quantity, unit_price, is_at_cost, line_total, sort_order
		FROM estimate_lines
		WHERE estimate_id = $1
		ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, fmt.Errorf("estimate: load lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		e.Lines = append(e.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argPos))
		args = append(args, *req.ProjectID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM estimates "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf("SELECT %s FROM estimates %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		estimateColumns, whereClause, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var estimates []Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, 0, err
		}
		estimates = append(estimates, *e)
	}
	return estimates, total, rows.Err()
}

func (r *repository) ListIDsByStatus(ctx context.Context, status EstimateStatus) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM estimates WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Estimate) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO estimates (
			project_id, doc_number, title, status, notes,
			markup_pct, contingency_pct, discount_pct, ppn_pct, escalation_pct,
			working_days_per_month, round_to_thousand,
			subtotal, escalation, overhead, contingency, discount, dpp, ppn, grand_total
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id`,
		e.ProjectID, e.DocNumber, e.Title, e.Status, textOrNil(e.Notes),
		e.Settings.MarkupPct, e.Settings.ContingencyPct, e.Settings.DiscountPct, e.Settings.TaxPct, e.Settings.EscalationPct,
		e.Settings.Assumptions.WorkingDaysPerMonth, e.Settings.Assumptions.RoundToThousand,
		e.Totals.Subtotal, e.Totals.Escalation, e.Totals.Overhead, e.Totals.Contingency,
		e.Totals.Discount, e.Totals.DPP, e.Totals.Tax, e.Totals.GrandTotal,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("estimate: insert: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, e Estimate) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE estimates SET
			title = $2, status = $3, notes = $4,
			markup_pct = $5, contingency_pct = $6, discount_pct = $7, ppn_pct = $8, escalation_pct = $9,
			working_days_per_month = $10, round_to_thousand = $11,
			subtotal = $12, escalation = $13, overhead = $14, contingency = $15,
			discount = $16, dpp = $17, ppn = $18, grand_total = $19,
			updated_at = NOW()
		WHERE id = $1`,
		e.ID, e.Title, e.Status, textOrNil(e.Notes),
		e.Settings.MarkupPct, e.Settings.ContingencyPct, e.Settings.DiscountPct, e.Settings.TaxPct, e.Settings.EscalationPct,
		e.Settings.Assumptions.WorkingDaysPerMonth, e.Settings.Assumptions.RoundToThousand,
		e.Totals.Subtotal, e.Totals.Escalation, e.Totals.Overhead, e.Totals.Contingency,
		e.Totals.Discount, e.Totals.DPP, e.Totals.Tax, e.Totals.GrandTotal)
	if err != nil {
		return fmt.Errorf("estimate: update header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ReplaceLines(ctx context.Context, estimateID int64, lines []EstimateLine) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM estimate_lines WHERE estimate_id = $1`, estimateID); err != nil {
		return fmt.Errorf("estimate: delete lines: %w", err)
	}
	for _, line := range lines {
		_, err := r.db.Exec(ctx, `
			INSERT INTO estimate_lines (estimate_id, kind, reference_id, description, unit, quantity, unit_price, is_at_cost, line_total, sort_order)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			estimateID, line.Kind, int8OrNil(line.ReferenceID), line.Description, line.Unit,
			line.Quantity, line.UnitPrice, line.IsAtCost, line.LineTotal, line.SortOrder)
		if err != nil {
			return fmt.Errorf("estimate: insert line: %w", err)
		}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM estimate_lines WHERE estimate_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM estimates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	// EST-{YY}{MM}-{SEQ}
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "EST", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EST-%s-%04d", date.Format("0601"), seq), nil
}

func scanEstimate(row pgx.Row) (*Estimate, error) {
	var e Estimate
	var notes pgtype.Text
	var markup, contingencyPct, discountPct, ppnPct, escalationPct pgtype.Numeric
	var subtotal, escalation, overhead, contingency, discount, dpp, ppn, grandTotal pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&e.ID, &e.ProjectID, &e.DocNumber, &e.Title, &e.Status, &notes,
		&markup, &contingencyPct, &discountPct, &ppnPct, &escalationPct,
		&e.Settings.Assumptions.WorkingDaysPerMonth, &e.Settings.Assumptions.RoundToThousand,
		&subtotal, &escalation, &overhead, &contingency, &discount, &dpp, &ppn, &grandTotal,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		val := notes.String
		e.Notes = &val
	}
	e.Settings.MarkupPct = numericFloat(markup)
	e.Settings.ContingencyPct = numericFloat(contingencyPct)
	e.Settings.DiscountPct = numericFloat(discountPct)
	e.Settings.TaxPct = numericFloat(ppnPct)
	e.Settings.EscalationPct = numericFloat(escalationPct)
	e.Totals.Subtotal = numericFloat(subtotal)
	e.Totals.Escalation = numericFloat(escalation)
	e.Totals.Overhead = numericFloat(overhead)
	e.Totals.Contingency = numericFloat(contingency)
	e.Totals.Discount = numericFloat(discount)
	e.Totals.DPP = numericFloat(dpp)
	e.Totals.Tax = numericFloat(ppn)
	e.Totals.GrandTotal = numericFloat(grandTotal)
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return &e, nil
}

func scanLine(row pgx.Row) (EstimateLine, error) {
	var line EstimateLine
	var refID pgtype.Int8
	var quantity, unitPrice, lineTotal pgtype.Numeric
	err := row.Scan(&line.ID, &line.EstimateID, &line.Kind, &refID, &line.Description, &line.Unit,
		&quantity, &unitPrice, &line.IsAtCost, &lineTotal, &line.SortOrder)
	if err != nil {
		return EstimateLine{}, err
	}
	if refID.Valid {
		val := refID.Int64
		line.ReferenceID = &val
	}
	line.Quantity = numericFloat(quantity)
	line.UnitPrice = numericFloat(unitPrice)
	line.LineTotal = numericFloat(lineTotal)
	return line, nil
}

func numericFloat(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	f, _ := n.Float64Value()
	return f.Float64
}

func textOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func int8OrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
