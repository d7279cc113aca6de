package estimate

import (
	"bytes"
	"strings"
	"testing"
)

func TestCSVStreamerFlushInterval(t *testing.T) {
	var buf bytes.Buffer
	streamer := newCSVStreamer(&buf)
	for i := 0; i < csvFlushEvery; i++ {
		if err := streamer.writeRow([]string{"row"}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if streamer.pendingLines != 0 {
		t.Fatalf("expected pending lines reset to 0, got %d", streamer.pendingLines)
	}
	if err := streamer.writeRow([]string{"next"}); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if streamer.pendingLines != 1 {
		t.Fatalf("expected pending lines 1, got %d", streamer.pendingLines)
	}
	if err := streamer.Close(); err != nil {
		t.Fatalf("close streamer: %v", err)
	}
}

func TestWriteCSVIncludesMetadataLinesAndTotals(t *testing.T) {
	e := &Estimate{
		DocNumber: "EST-2609-0001",
		Title:     "Network rollout",
		Status:    EstimateStatusDraft,
		Settings:  DefaultSettings(),
		Lines: []EstimateLine{
			{Kind: LineKindBLP, Description: "Senior Engineer", Unit: "man-days", Quantity: 10, UnitPrice: 2_000_000},
			{Kind: LineKindBLNP, Description: "Permit fee", Unit: "unit", Quantity: 1, UnitPrice: 500_000, IsAtCost: true},
		},
	}
	e.Recompute()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, e); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	content := buf.String()

	if !strings.Contains(content, "\r\n") {
		t.Fatalf("expected CRLF line endings")
	}
	if !strings.Contains(content, "# Estimate: EST-2609-0001") {
		t.Fatalf("expected doc number comment, got:\n%s", content)
	}
	if !strings.Contains(content, "Senior Engineer") {
		t.Fatalf("expected line description, got:\n%s", content)
	}
	if !strings.Contains(content, "Permit fee (at cost)") {
		t.Fatalf("expected at-cost marker, got:\n%s", content)
	}
	if !strings.Contains(content, "Grand Total") {
		t.Fatalf("expected totals section, got:\n%s", content)
	}
	if !strings.Contains(content, "PPN 11%") {
		t.Fatalf("expected tax row with percentage, got:\n%s", content)
	}
	// 20.500.000 subtotal in Indonesian digit grouping.
	if !strings.Contains(content, "20.500.000,00") {
		t.Fatalf("expected grouped subtotal, got:\n%s", content)
	}
}

func TestWriteCSVEmptyEstimate(t *testing.T) {
	e := &Estimate{DocNumber: "EST-2609-0002", Title: "Empty", Status: EstimateStatusDraft, Settings: DefaultSettings()}
	e.Recompute()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, e); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(buf.String(), "Subtotal") {
		t.Fatalf("expected totals rows even with no lines")
	}
}
