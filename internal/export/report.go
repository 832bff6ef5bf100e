// Package export renders completed-session reports as XLSX and PDF
// files for the owner's bookkeeping.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/pricing"
)

// BuildSessionsPDF renders a completed-sessions report.
func BuildSessionsPDF(sessions []model.Session, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Completed Sessions Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rate card: %s", pricing.RateCardVersion()))
	pdf.Ln(5)

	var totalBilled, totalCollected int64
	for _, s := range sessions {
		totalBilled += s.Price
		totalCollected += s.PaidAmount
	}
	pdf.Cell(0, 6, fmt.Sprintf("Sessions: %d | Billed: %d | Collected: %d",
		len(sessions), totalBilled, totalCollected))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(48, 6, "Customer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Start", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Minutes", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "People", "1", 0, "C", false, 0, "")
	pdf.CellFormat(52, 6, "Devices", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Window", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Paid", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, s := range sessions {
		pdf.CellFormat(48, 6, s.CustomerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(34, 6, s.StartTime.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d", s.DurationMinutes), "1", 0, "R", false, 0, "")
		pdf.CellFormat(18, 6, fmt.Sprintf("%d", s.PeopleCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(52, 6, formatClaims(s.Devices), "1", 0, "L", false, 0, "")
		pdf.CellFormat(24, 6, pricing.ClassifyWindow(s.StartTime).String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(26, 6, fmt.Sprintf("%d", s.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, fmt.Sprintf("%d", s.PaidAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSessionsXLSX renders a completed-sessions workbook with a
// summary sheet and one row per session.
func BuildSessionsXLSX(sessions []model.Session, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	sessionsSheet := "sessions"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(sessionsSheet)

	var totalBilled, totalCollected int64
	for _, s := range sessions {
		totalBilled += s.Price
		totalCollected += s.PaidAmount
	}

	_ = f.SetCellValue(summarySheet, "A1", "Completed Sessions Report")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", generatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Rate card")
	_ = f.SetCellValue(summarySheet, "B4", pricing.RateCardVersion())
	_ = f.SetCellValue(summarySheet, "A5", "Sessions")
	_ = f.SetCellValue(summarySheet, "B5", len(sessions))
	_ = f.SetCellValue(summarySheet, "A6", "Total billed")
	_ = f.SetCellValue(summarySheet, "B6", totalBilled)
	_ = f.SetCellValue(summarySheet, "A7", "Total collected")
	_ = f.SetCellValue(summarySheet, "B7", totalCollected)

	headers := []string{"Customer", "Start", "Minutes", "People", "Devices", "Window", "Price", "Paid", "Paid heads"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sessionsSheet, cell, h)
	}
	for i, s := range sessions {
		row := i + 2
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("A%d", row), s.CustomerName)
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("B%d", row), s.StartTime.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("C%d", row), s.DurationMinutes)
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("D%d", row), s.PeopleCount)
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("E%d", row), formatClaims(s.Devices))
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("F%d", row), pricing.ClassifyWindow(s.StartTime).String())
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("G%d", row), s.Price)
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("H%d", row), s.PaidAmount)
		_ = f.SetCellValue(sessionsSheet, fmt.Sprintf("I%d", row), s.PaidPeople)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatClaims renders claims like "ps[1,3] vr[2]", kinds sorted for a
// stable layout.
func formatClaims(claims model.DeviceClaims) string {
	if len(claims) == 0 {
		return "-"
	}
	kinds := make([]string, 0, len(claims))
	for kind := range claims {
		if len(claims[kind]) > 0 {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return "-"
	}
	sort.Strings(kinds)

	var b strings.Builder
	for i, kind := range kinds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kind)
		b.WriteByte('[')
		for j, unit := range claims[kind] {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", unit)
		}
		b.WriteByte(']')
	}
	return b.String()
}
