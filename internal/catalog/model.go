// Package catalog maintains the BLP/BLNP rate reference data estimates draw
// their line items from.
package catalog

import "time"

// BlpRate is a direct personnel cost entry (biaya langsung personel): a
// role/specification with its monthly and daily billing rates. The two rates
// are independently settable; no ratio between them is enforced.
type BlpRate struct {
	ID            int64     `json:"id" db:"id"`
	Specification string    `json:"specification" db:"specification"`
	Reference     string    `json:"reference" db:"reference"`
	MonthlyRate   float64   `json:"monthlyRate" db:"monthly_rate"`
	DailyRate     float64   `json:"dailyRate" db:"daily_rate"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// BlnpRate is a direct non-personnel cost entry (biaya langsung non-personel).
// When IsAtCost is set the entry has no fixed catalog price and the consumer
// supplies a price at line-creation time.
type BlnpRate struct {
	ID              int64     `json:"id" db:"id"`
	ItemDescription string    `json:"itemDescription" db:"item_description"`
	Reference       string    `json:"reference" db:"reference"`
	FixedValue      float64   `json:"fixedValue" db:"fixed_value"`
	IsAtCost        bool      `json:"isAtCost" db:"is_at_cost"`
	Note            *string   `json:"note,omitempty" db:"note"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
