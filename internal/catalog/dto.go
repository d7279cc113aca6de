package catalog

// CreateBlpRequest creates a personnel rate entry.
type CreateBlpRequest struct {
	Specification string  `json:"specification" validate:"required,max=255"`
	Reference     string  `json:"reference" validate:"required,max=64"`
	MonthlyRate   float64 `json:"monthlyRate" validate:"gte=0"`
	DailyRate     float64 `json:"dailyRate" validate:"gte=0"`
}

// UpdateBlpRequest replaces the mutable fields of a personnel rate entry.
type UpdateBlpRequest struct {
	Specification string  `json:"specification" validate:"required,max=255"`
	Reference     string  `json:"reference" validate:"required,max=64"`
	MonthlyRate   float64 `json:"monthlyRate" validate:"gte=0"`
	DailyRate     float64 `json:"dailyRate" validate:"gte=0"`
	IsActive      bool    `json:"isActive"`
}

// CreateBlnpRequest creates a non-personnel rate entry. FixedValue is ignored
// for at-cost entries, which have no catalog price.
type CreateBlnpRequest struct {
	ItemDescription string  `json:"itemDescription" validate:"required,max=255"`
	Reference       string  `json:"reference" validate:"required,max=64"`
	FixedValue      float64 `json:"fixedValue" validate:"gte=0"`
	IsAtCost        bool    `json:"isAtCost"`
	Note            *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// UpdateBlnpRequest replaces the mutable fields of a non-personnel rate entry.
type UpdateBlnpRequest struct {
	ItemDescription string  `json:"itemDescription" validate:"required,max=255"`
	Reference       string  `json:"reference" validate:"required,max=64"`
	FixedValue      float64 `json:"fixedValue" validate:"gte=0"`
	IsAtCost        bool    `json:"isAtCost"`
	Note            *string `json:"note,omitempty" validate:"omitempty,max=500"`
	IsActive        bool    `json:"isActive"`
}
