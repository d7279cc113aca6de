// Package pricing implements the cost-estimate totals cascade.
package pricing

import "math"

// Line carries the two inputs a line contributes to the cascade. Stored line
// totals are never read here; the subtotal is always recomputed from quantity
// and unit price.
type Line struct {
	Quantity  float64
	UnitPrice float64
}

// Settings holds the percentage knobs applied on top of the subtotal. All
// percentages are plain numbers where 11 means 11%. Values are applied as
// given: negative percentages and rates above 100 pass through unclamped.
type Settings struct {
	EscalationPct   float64
	MarkupPct       float64
	ContingencyPct  float64
	DiscountPct     float64
	TaxPct          float64
	RoundToThousand bool
}

// Totals is the cascading financial summary. Every field is derived; DPP is
// the tax base (dasar pengenaan pajak) the tax amount is computed against.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Escalation  float64 `json:"escalation"`
	Overhead    float64 `json:"overhead"`
	Contingency float64 `json:"contingency"`
	Discount    float64 `json:"discount"`
	DPP         float64 `json:"dpp"`
	Tax         float64 `json:"ppn"`
	GrandTotal  float64 `json:"grandTotal"`
}

// Compute folds the line list into totals. Each percentage applies to the
// running amount so far: escalation on the subtotal, markup on
// subtotal+escalation, contingency on subtotal+escalation+overhead, discount
// on the pre-discount sum, tax on the discounted base. An empty line list
// yields all zeros.
func Compute(lines []Line, s Settings) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.Quantity * line.UnitPrice
	}

	escalation := subtotal * (s.EscalationPct / 100)
	overhead := (subtotal + escalation) * (s.MarkupPct / 100)
	contingency := (subtotal + escalation + overhead) * (s.ContingencyPct / 100)
	preDiscount := subtotal + escalation + overhead + contingency
	discount := preDiscount * (s.DiscountPct / 100)
	dpp := preDiscount - discount
	tax := dpp * (s.TaxPct / 100)
	grandTotal := dpp + tax

	totals := Totals{
		Subtotal:    subtotal,
		Escalation:  escalation,
		Overhead:    overhead,
		Contingency: contingency,
		Discount:    discount,
		DPP:         dpp,
		Tax:         tax,
		GrandTotal:  grandTotal,
	}
	if s.RoundToThousand {
		totals = totals.roundedToThousand()
	}
	return totals
}

// roundedToThousand rounds the derived fields to the nearest multiple of 1000,
// half up, each from the exact cascade value. The subtotal stays raw: it is a
// plain sum, not a derived percentage step.
func (t Totals) roundedToThousand() Totals {
	t.Escalation = roundThousand(t.Escalation)
	t.Overhead = roundThousand(t.Overhead)
	t.Contingency = roundThousand(t.Contingency)
	t.Discount = roundThousand(t.Discount)
	t.DPP = roundThousand(t.DPP)
	t.Tax = roundThousand(t.Tax)
	t.GrandTotal = roundThousand(t.GrandTotal)
	return t
}

func roundThousand(v float64) float64 {
	return math.Floor(v/1000+0.5) * 1000
}
