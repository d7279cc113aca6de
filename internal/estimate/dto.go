package estimate

// LineRequest is a line record as the dashboard submits it. The lineTotal
// field is accepted for wire compatibility and ignored: totals are always
// recomputed server-side.
type LineRequest struct {
	Kind        LineKind `json:"kind" validate:"required,oneof=BLP BLNP CUSTOM"`
	ReferenceID *int64   `json:"referenceId,omitempty"`
	Description string   `json:"description" validate:"max=500"`
	Unit        string   `json:"unit" validate:"max=30"`
	Quantity    float64  `json:"qty"`
	UnitPrice   float64  `json:"unitPrice"`
	IsAtCost    bool     `json:"isAtCost"`
	LineTotal   float64  `json:"lineTotal"`
	SortOrder   int      `json:"sort"`
}

// CreateEstimateRequest creates an estimate with an optional initial line
// list. Absent settings fall back to DefaultSettings.
type CreateEstimateRequest struct {
	ProjectID int64            `json:"projectId" validate:"required,gt=0"`
	Title     string           `json:"title" validate:"required,max=255"`
	Notes     *string          `json:"notes,omitempty"`
	Settings  *ProjectSettings `json:"settings,omitempty"`
	Lines     []LineRequest    `json:"lines" validate:"omitempty,dive"`
}

// UpdateEstimateRequest mutates a draft estimate. A non-nil Lines replaces
// the whole line list.
type UpdateEstimateRequest struct {
	Title    *string          `json:"title,omitempty" validate:"omitempty,max=255"`
	Notes    *string          `json:"notes,omitempty"`
	Settings *ProjectSettings `json:"settings,omitempty"`
	Lines    *[]LineRequest   `json:"lines,omitempty" validate:"omitempty,dive"`
}

// AddLineRequest appends one line: from a catalog rate for BLP/BLNP, or a
// blank custom row. UnitPrice overrides the catalog default, which at-cost
// BLNP entries require before the line is meaningful.
type AddLineRequest struct {
	Kind      LineKind `json:"kind" validate:"required,oneof=BLP BLNP CUSTOM"`
	RateID    *int64   `json:"rateId,omitempty" validate:"required_unless=Kind CUSTOM,omitempty,gt=0"`
	Quantity  *float64 `json:"qty,omitempty"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
}

// ListEstimatesRequest filters the estimate listing.
type ListEstimatesRequest struct {
	ProjectID *int64          `json:"projectId,omitempty"`
	Status    *EstimateStatus `json:"status,omitempty"`
	Page      int             `json:"page"`
	PerPage   int             `json:"perPage"`
}

func (r LineRequest) toLine() EstimateLine {
	line := EstimateLine{
		Kind:        r.Kind,
		ReferenceID: r.ReferenceID,
		Description: r.Description,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		IsAtCost:    r.IsAtCost,
		SortOrder:   r.SortOrder,
	}
	if line.Unit == "" {
		line.Unit = unitDefault
	}
	line.Recalc()
	return line
}
