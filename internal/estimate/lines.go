package estimate

import "github.com/prakira-pmo/prakira-pmo/internal/catalog"

const (
	unitManDays = "man-days"
	unitDefault = "unit"
)

// NewLineFromBlp builds a line from a personnel rate. The daily rate is the
// default unit price; the monthly rate is informational at add time.
func NewLineFromBlp(rate catalog.BlpRate) EstimateLine {
	refID := rate.ID
	line := EstimateLine{
		Kind:        LineKindBLP,
		ReferenceID: &refID,
		Description: rate.Specification,
		Unit:        unitManDays,
		Quantity:    1,
		UnitPrice:   rate.DailyRate,
	}
	line.Recalc()
	return line
}

// NewLineFromBlnp builds a line from a non-personnel rate. At-cost entries
// start at price zero; the caller supplies a price before the line is
// meaningful.
func NewLineFromBlnp(rate catalog.BlnpRate) EstimateLine {
	refID := rate.ID
	line := EstimateLine{
		Kind:        LineKindBLNP,
		ReferenceID: &refID,
		Description: rate.ItemDescription,
		Unit:        unitDefault,
		Quantity:    1,
		IsAtCost:    rate.IsAtCost,
	}
	if !rate.IsAtCost {
		line.UnitPrice = rate.FixedValue
	}
	line.Recalc()
	return line
}

// NewCustomLine builds a blank custom row.
func NewCustomLine() EstimateLine {
	line := EstimateLine{
		Kind:     LineKindCustom,
		Unit:     unitDefault,
		Quantity: 1,
	}
	line.Recalc()
	return line
}

// AppendLine appends the line at the end of the list, stamping its sort order
// with the pre-append length. Lines are never inserted out of append order.
func AppendLine(lines []EstimateLine, line EstimateLine) []EstimateLine {
	line.SortOrder = len(lines)
	return append(lines, line)
}

// LineUpdate is a partial update of a line's editable fields.
type LineUpdate struct {
	Description *string  `json:"description,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Quantity    *float64 `json:"qty,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
}

// ApplyLineUpdate sets the provided fields on the line. Touching quantity or
// unit price recomputes the line total from the post-update values of both;
// other fields leave it alone.
func ApplyLineUpdate(line *EstimateLine, patch LineUpdate) {
	if patch.Description != nil {
		line.Description = *patch.Description
	}
	if patch.Unit != nil {
		line.Unit = *patch.Unit
	}
	priceTouched := false
	if patch.Quantity != nil {
		line.Quantity = *patch.Quantity
		priceTouched = true
	}
	if patch.UnitPrice != nil {
		line.UnitPrice = *patch.UnitPrice
		priceTouched = true
	}
	if priceTouched {
		line.Recalc()
	}
}

// RemoveLine drops the line at index, preserving the order of the survivors.
// Surviving sort orders are not renumbered here; position in the remaining
// list is what computation and display follow, and save rewrites sort_order
// from position.
func RemoveLine(lines []EstimateLine, index int) []EstimateLine {
	if index < 0 || index >= len(lines) {
		return lines
	}
	return append(lines[:index], lines[index+1:]...)
}
