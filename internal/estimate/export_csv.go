package estimate

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// amountPrinter formats rupiah amounts with Indonesian digit grouping, the
// way the dashboard renders them.
var amountPrinter = message.NewPrinter(language.Indonesian)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// WriteCSV renders the estimate as a lines-plus-totals CSV document.
func WriteCSV(w io.Writer, e *Estimate) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Estimate: %s", e.DocNumber)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Title: %s", e.Title)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Status: %s", e.Status)); err != nil {
		return err
	}

	if err := streamer.writeRow([]string{"No", "Kind", "Description", "Unit", "Qty", "Unit Price", "Line Total"}); err != nil {
		return err
	}
	for i, line := range e.Lines {
		description := line.Description
		if line.IsAtCost {
			description += " (at cost)"
		}
		if err := streamer.writeRow([]string{
			strconv.Itoa(i + 1),
			string(line.Kind),
			description,
			line.Unit,
			formatQty(line.Quantity),
			formatAmount(line.UnitPrice),
			formatAmount(line.LineTotal),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", "", "", ""}); err != nil {
		return err
	}

	totalsRows := [][]string{
		{"", "Totals", "Subtotal", "", "", "", formatAmount(e.Totals.Subtotal)},
		{"", "Totals", fmt.Sprintf("Escalation %s%%", formatQty(e.Settings.EscalationPct)), "", "", "", formatAmount(e.Totals.Escalation)},
		{"", "Totals", fmt.Sprintf("Overhead %s%%", formatQty(e.Settings.MarkupPct)), "", "", "", formatAmount(e.Totals.Overhead)},
		{"", "Totals", fmt.Sprintf("Contingency %s%%", formatQty(e.Settings.ContingencyPct)), "", "", "", formatAmount(e.Totals.Contingency)},
		{"", "Totals", fmt.Sprintf("Discount %s%%", formatQty(e.Settings.DiscountPct)), "", "", "", formatAmount(e.Totals.Discount)},
		{"", "Totals", "DPP", "", "", "", formatAmount(e.Totals.DPP)},
		{"", "Totals", fmt.Sprintf("PPN %s%%", formatQty(e.Settings.TaxPct)), "", "", "", formatAmount(e.Totals.Tax)},
		{"", "Totals", "Grand Total", "", "", "", formatAmount(e.Totals.GrandTotal)},
	}
	for _, row := range totalsRows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
