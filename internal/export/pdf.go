package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/trackdeal/settlements/internal/service"
)

type PDFGenerator struct {
	fontName string
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{fontName: "Helvetica"}
}

// Statement renders the one-page termination settlement statement.
func (g *PDFGenerator) Statement(detail service.TerminationDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	t := detail.Termination

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Contract Termination Settlement Statement", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract: %s", detail.Contract.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Terminated %s by %s (%s)",
		formatDate(t.CreatedAt), t.TerminatedBy, t.Type), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Settlement", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Item", "Amount"}
	colWidths := []float64{120, 60}
	g.drawRow(pdf, headers, colWidths, true)

	rows := [][]string{
		{"Total amount in scope", t.TotalAmount.String()},
		{"Team compensation (gross)", t.TotalTeamGross.String()},
		{"Team tax withheld", t.TeamTax.String()},
		{"Owner compensation pool", t.OwnerCompensation.String()},
		{"Owner actual receive", t.OwnerActualReceive.String()},
		{"Client refund", t.ClientRefund.String()},
	}
	for _, row := range rows {
		g.drawRow(pdf, row, colWidths, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Tax record", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	g.drawRow(pdf, headers, colWidths, true)
	record := detail.TaxRecord
	taxRows := [][]string{
		{"Originally withheld tax", record.OriginalTax.String()},
		{"Actual tax owed", record.ActualTax.String()},
		{"Deferred refund", record.RefundedTax.String()},
		{"Status", string(record.Status)},
	}
	if record.RefundScheduledDate != nil {
		taxRows = append(taxRows, []string{"Refund scheduled", formatDate(*record.RefundScheduledDate)})
	}
	for _, row := range taxRows {
		g.drawRow(pdf, row, colWidths, false)
	}

	if detail.Payment != nil {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("Owner compensation order %s: %s (%s)",
			detail.Payment.OrderCode, detail.Payment.Amount.String(), detail.Payment.Status), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", formatDate(time.Now())), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) drawRow(pdf *gofpdf.Fpdf, cells []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, cell, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
