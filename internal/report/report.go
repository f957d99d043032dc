// Package report renders the printable clearance record of a stop-work event.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/mtlprog/stopwork/internal/domain"
)

const timeLayout = "02-Jan-2006 15:04 MST"

// ClearanceRecord renders the event header, its clearance steps, evidence
// and full audit trail as a PDF document.
func ClearanceRecord(e *domain.Event, trail []*domain.AuditEntry, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s  page %d/{nb}", e.EventNumber, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, tr("Stop Work Clearance Record"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(timeLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr, "Event")
	pdf.SetFont("Arial", "", 10)
	pair(pdf, tr, "Number", e.EventNumber, "Status", string(e.Status))
	pair(pdf, tr, "Scope", fmt.Sprintf("%s %s", e.ScopeType, e.ScopeID), "Severity", string(e.Severity))
	pair(pdf, tr, "Reason", e.ReasonCode, "Rejections", fmt.Sprintf("%d", e.RejectionCount))
	pair(pdf, tr, "Initiated by", fmt.Sprintf("%s (%s)", e.InitiatedBy, e.InitiatedByRole), "Initiated at", e.InitiatedAt.Format(timeLayout))

	cleared := "-"
	clearedAt := "-"
	if e.ClearedBy != nil {
		cleared = *e.ClearedBy
		if e.ClearedByRole != nil {
			cleared = fmt.Sprintf("%s (%s)", cleared, *e.ClearedByRole)
		}
	}
	if e.ClearedAt != nil {
		clearedAt = e.ClearedAt.Format(timeLayout)
	}
	pair(pdf, tr, "Cleared by", cleared, "Cleared at", clearedAt)

	if desc := strings.TrimSpace(e.ScopeDescription + "\n" + e.Description); desc != "" {
		pdf.MultiCell(190, 6, tr(desc), "1", "L", false)
	}
	pdf.Ln(4)

	// Clearance steps
	section(pdf, tr, "Clearance Steps")
	header(pdf, tr, []float64{10, 62, 30, 26, 30, 32}, "#", "Step", "Required role", "Status", "Completed by", "Completed at")
	pdf.SetFont("Arial", "", 9)
	for _, s := range e.Steps {
		by, at := "-", "-"
		if s.CompletedBy != nil {
			by = *s.CompletedBy
		}
		if s.CompletedAt != nil {
			at = s.CompletedAt.Format("02-Jan 15:04")
		}
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", s.StepNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(62, 6, tr(truncate(s.Title, 40)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, string(s.RequiredRole), "1", 0, "C", false, 0, "")
		pdf.CellFormat(26, 6, string(s.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, tr(truncate(by, 18)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(32, 6, at, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	// Evidence
	section(pdf, tr, "Evidence")
	pdf.SetFont("Arial", "", 9)
	if len(e.Evidence) == 0 {
		pdf.CellFormat(190, 6, "No evidence attached", "1", 1, "L", false, 0, "")
	} else {
		header(pdf, tr, []float64{22, 12, 80, 40, 36}, "Type", "Step", "Reference", "Uploaded by", "Uploaded at")
		pdf.SetFont("Arial", "", 9)
		for _, ev := range e.Evidence {
			step := "-"
			if ev.StepNumber != nil {
				step = fmt.Sprintf("%d", *ev.StepNumber)
			}
			pdf.CellFormat(22, 6, string(ev.Type), "1", 0, "C", false, 0, "")
			pdf.CellFormat(12, 6, step, "1", 0, "C", false, 0, "")
			pdf.CellFormat(80, 6, tr(truncate(ev.FileRef, 52)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, tr(truncate(ev.UploadedBy, 24)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(36, 6, ev.UploadedAt.Format("02-Jan 15:04"), "1", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	// Audit trail
	section(pdf, tr, "Audit Trail")
	header(pdf, tr, []float64{30, 38, 34, 88}, "When", "Action", "By", "Details")
	pdf.SetFont("Arial", "", 8)
	for _, entry := range trail {
		details := entry.Description
		if entry.Notes != "" {
			details += ": " + entry.Notes
		}
		pdf.CellFormat(30, 6, entry.PerformedAt.Format("02-Jan 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(38, 6, string(entry.Action), "1", 0, "L", false, 0, "")
		pdf.CellFormat(34, 6, tr(truncate(fmt.Sprintf("%s (%s)", entry.PerformedBy, entry.PerformedByRole), 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(88, 6, tr(truncate(details, 60)), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render clearance record: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, tr(title), "1", 1, "L", true, 0, "")
}

func header(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, titles ...string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, t := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, tr(t), "1", ln, "C", true, 0, "")
	}
}

func pair(pdf *gofpdf.Fpdf, tr func(string) string, k1, v1, k2, v2 string) {
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("%s: %s", k1, v1)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("%s: %s", k2, v2)), "RB", 1, "L", false, 0, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
