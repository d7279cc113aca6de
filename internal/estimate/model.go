// Package estimate implements the cost-estimate aggregate: catalog-driven
// line items, project settings and the persisted totals cascade.
package estimate

import (
	"time"

	"github.com/prakira-pmo/prakira-pmo/internal/estimate/pricing"
)

// LineKind tags where a line item came from.
type LineKind string

const (
	LineKindBLP    LineKind = "BLP"
	LineKindBLNP   LineKind = "BLNP"
	LineKindCustom LineKind = "CUSTOM"
)

// EstimateStatus is the aggregate lifecycle. Finalized estimates are frozen.
type EstimateStatus string

const (
	EstimateStatusDraft EstimateStatus = "DRAFT"
	EstimateStatusFinal EstimateStatus = "FINAL"
)

// EstimateLine is one row of an estimate. LineTotal is derived from quantity
// and unit price; Recalc enforces the invariant and the totals engine
// recomputes the contribution regardless, so a stale stored value can never
// leak into the cascade.
type EstimateLine struct {
	ID          int64    `json:"id" db:"id"`
	EstimateID  int64    `json:"-" db:"estimate_id"`
	Kind        LineKind `json:"kind" db:"kind"`
	ReferenceID *int64   `json:"referenceId,omitempty" db:"reference_id"`
	Description string   `json:"description" db:"description"`
	Unit        string   `json:"unit" db:"unit"`
	Quantity    float64  `json:"qty" db:"quantity"`
	UnitPrice   float64  `json:"unitPrice" db:"unit_price"`
	IsAtCost    bool     `json:"isAtCost" db:"is_at_cost"`
	LineTotal   float64  `json:"lineTotal" db:"line_total"`
	SortOrder   int      `json:"sort" db:"sort_order"`
}

// Recalc restores the line-total invariant from the current quantity and
// unit price.
func (l *EstimateLine) Recalc() {
	l.LineTotal = l.Quantity * l.UnitPrice
}

// Assumptions carries catalog-side knobs. WorkingDaysPerMonth informs
// day/month rate selection in the UI and never enters the totals cascade.
type Assumptions struct {
	WorkingDaysPerMonth int  `json:"workingDaysPerMonth"`
	RoundToThousand     bool `json:"roundToThousand"`
}

// ProjectSettings is the percentage configuration of an estimate. JSON names
// follow the persisted settings records of the consuming dashboard
// (markUpPct, ppnPct).
type ProjectSettings struct {
	MarkupPct      float64     `json:"markUpPct"`
	ContingencyPct float64     `json:"contingencyPct"`
	DiscountPct    float64     `json:"discountPct"`
	TaxPct         float64     `json:"ppnPct"`
	EscalationPct  float64     `json:"escalationPct"`
	Assumptions    Assumptions `json:"assumptions"`
}

// DefaultSettings returns the settings applied when a request carries none:
// 11% PPN, 20 working days, no rounding.
func DefaultSettings() ProjectSettings {
	return ProjectSettings{
		TaxPct:      11,
		Assumptions: Assumptions{WorkingDaysPerMonth: 20},
	}
}

// Pricing maps the settings onto the totals engine input.
func (s ProjectSettings) Pricing() pricing.Settings {
	return pricing.Settings{
		EscalationPct:   s.EscalationPct,
		MarkupPct:       s.MarkupPct,
		ContingencyPct:  s.ContingencyPct,
		DiscountPct:     s.DiscountPct,
		TaxPct:          s.TaxPct,
		RoundToThousand: s.Assumptions.RoundToThousand,
	}
}

// Estimate is the aggregate root. Totals are derived state: recomputed from
// the lines and settings on every write, persisted only as a read model.
type Estimate struct {
	ID        int64           `json:"id" db:"id"`
	ProjectID int64           `json:"projectId" db:"project_id"`
	DocNumber string          `json:"docNumber" db:"doc_number"`
	Title     string          `json:"title" db:"title"`
	Status    EstimateStatus  `json:"status" db:"status"`
	Notes     *string         `json:"notes,omitempty" db:"notes"`
	Settings  ProjectSettings `json:"settings" db:"-"`
	Totals    pricing.Totals  `json:"totals" db:"-"`
	Lines     []EstimateLine  `json:"lines,omitempty" db:"-"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Recompute restores every line's total, renumbers sort order to list
// position and folds the lines through the totals cascade. Computation order
// is the current list order; the persisted sort_order mirrors it so reloads
// replay the same order.
func (e *Estimate) Recompute() {
	priced := make([]pricing.Line, len(e.Lines))
	for i := range e.Lines {
		e.Lines[i].Recalc()
		e.Lines[i].SortOrder = i
		priced[i] = pricing.Line{Quantity: e.Lines[i].Quantity, UnitPrice: e.Lines[i].UnitPrice}
	}
	e.Totals = pricing.Compute(priced, e.Settings.Pricing())
}

// Editable reports whether the estimate still accepts writes.
func (e *Estimate) Editable() bool {
	return e.Status == EstimateStatusDraft
}
