package estimate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prakira-pmo/prakira-pmo/internal/catalog"
)

func TestNewLineFromBlpDefaults(t *testing.T) {
	rate := catalog.BlpRate{ID: 7, Specification: "Senior Engineer", MonthlyRate: 30000000, DailyRate: 1500000, IsActive: true}

	line := NewLineFromBlp(rate)

	require.Equal(t, LineKindBLP, line.Kind)
	require.NotNil(t, line.ReferenceID)
	require.Equal(t, int64(7), *line.ReferenceID)
	require.Equal(t, "Senior Engineer", line.Description)
	require.Equal(t, "man-days", line.Unit)
	require.Equal(t, 1.0, line.Quantity)
	require.Equal(t, 1500000.0, line.UnitPrice, "daily rate is the add-time default, not the monthly rate")
	require.Equal(t, 1500000.0, line.LineTotal)
}

func TestNewLineFromBlnpAtCost(t *testing.T) {
	fixed := catalog.BlnpRate{ID: 3, ItemDescription: "Sewa kendaraan", FixedValue: 750000}
	atCost := catalog.BlnpRate{ID: 4, ItemDescription: "Tiket pesawat", FixedValue: 999999, IsAtCost: true}

	fixedLine := NewLineFromBlnp(fixed)
	require.Equal(t, 750000.0, fixedLine.UnitPrice)
	require.False(t, fixedLine.IsAtCost)

	atCostLine := NewLineFromBlnp(atCost)
	require.True(t, atCostLine.IsAtCost)
	require.Zero(t, atCostLine.UnitPrice, "at-cost lines start unpriced")
	require.Zero(t, atCostLine.LineTotal)
}

func TestNewCustomLine(t *testing.T) {
	line := NewCustomLine()
	require.Equal(t, LineKindCustom, line.Kind)
	require.Nil(t, line.ReferenceID)
	require.Empty(t, line.Description)
	require.Equal(t, "unit", line.Unit)
	require.Equal(t, 1.0, line.Quantity)
	require.Zero(t, line.UnitPrice)
	require.Zero(t, line.LineTotal)
}

func TestAppendLineStampsSortOrder(t *testing.T) {
	var lines []EstimateLine
	lines = AppendLine(lines, NewCustomLine())
	lines = AppendLine(lines, NewCustomLine())
	lines = AppendLine(lines, NewCustomLine())
	for i, line := range lines {
		require.Equal(t, i, line.SortOrder)
	}
}

func TestApplyLineUpdateRecalculatesTotal(t *testing.T) {
	line := EstimateLine{Kind: LineKindCustom, Quantity: 1, UnitPrice: 200, LineTotal: 999} // stale total on purpose

	qty := 5.0
	ApplyLineUpdate(&line, LineUpdate{Quantity: &qty})
	require.Equal(t, 1000.0, line.LineTotal, "total must come from post-update qty and current price")

	price := 300.0
	ApplyLineUpdate(&line, LineUpdate{UnitPrice: &price})
	require.Equal(t, 1500.0, line.LineTotal)
}

func TestApplyLineUpdateDescriptionLeavesTotal(t *testing.T) {
	line := EstimateLine{Quantity: 2, UnitPrice: 100, LineTotal: 200}
	desc := "Workshop facilitation"
	unit := "session"
	ApplyLineUpdate(&line, LineUpdate{Description: &desc, Unit: &unit})
	require.Equal(t, "Workshop facilitation", line.Description)
	require.Equal(t, "session", line.Unit)
	require.Equal(t, 200.0, line.LineTotal)
}

func TestRemoveLineKeepsOrder(t *testing.T) {
	lines := []EstimateLine{
		{Description: "a", SortOrder: 0},
		{Description: "b", SortOrder: 1},
		{Description: "c", SortOrder: 2},
	}
	lines = RemoveLine(lines, 1)
	require.Len(t, lines, 2)
	require.Equal(t, "a", lines[0].Description)
	require.Equal(t, "c", lines[1].Description)
	// Stored sort orders keep their gap until the next save.
	require.Equal(t, 2, lines[1].SortOrder)

	require.Len(t, RemoveLine(lines, 5), 2, "out-of-range index is a no-op")
	require.Len(t, RemoveLine(lines, -1), 2)
}

func TestRecomputeIgnoresStaleLineTotals(t *testing.T) {
	estimate := Estimate{
		Status:   EstimateStatusDraft,
		Settings: ProjectSettings{TaxPct: 11},
		Lines: []EstimateLine{
			{Quantity: 5, UnitPrice: 200, LineTotal: 42, SortOrder: 9},
		},
	}
	estimate.Recompute()
	require.Equal(t, 1000.0, estimate.Lines[0].LineTotal)
	require.Equal(t, 0, estimate.Lines[0].SortOrder, "sort order is rewritten to list position")
	require.Equal(t, 1000.0, estimate.Totals.Subtotal)
	require.Equal(t, 110.0, estimate.Totals.Tax)
	require.Equal(t, 1110.0, estimate.Totals.GrandTotal)
}
