// Package export renders termination settlement statements for download:
// an xlsx workbook and a one-page PDF.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/service"
)

type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Statement writes a two-sheet workbook: the settlement summary and the
// ledger entries the termination produced.
func (g *ExcelGenerator) Statement(detail service.TerminationDetail) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, detail); err != nil {
		return nil, err
	}

	ledgerSheet := "Ledger"
	file.NewSheet(ledgerSheet)
	if err := g.writeLedger(file, ledgerSheet, detail.Transactions); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(file *excelize.File, sheet string, detail service.TerminationDetail) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	t := detail.Termination
	set("A1", "Contract")
	set("B1", detail.Contract.Title)
	set("A2", "Terminated by")
	set("B2", string(t.TerminatedBy))
	set("A3", "Termination type")
	set("B3", string(t.Type))
	set("A4", "Status")
	set("B4", string(t.Status))
	set("A5", "Terminated at")
	set("B5", t.CreatedAt.Format("2006-01-02 15:04"))

	set("A7", "Total amount")
	set("B7", t.TotalAmount.String())
	set("A8", "Team gross")
	set("B8", t.TotalTeamGross.String())
	set("A9", "Team tax")
	set("B9", t.TeamTax.String())
	set("A10", "Owner compensation")
	set("B10", t.OwnerCompensation.String())
	set("A11", "Owner actual receive")
	set("B11", t.OwnerActualReceive.String())
	set("A12", "Client refund")
	set("B12", t.ClientRefund.String())

	record := detail.TaxRecord
	set("A14", "Original tax")
	set("B14", record.OriginalTax.String())
	set("A15", "Actual tax")
	set("B15", record.ActualTax.String())
	set("A16", "Refunded tax")
	set("B16", record.RefundedTax.String())
	set("A17", "Tax record status")
	set("B17", string(record.Status))
	if record.RefundScheduledDate != nil {
		set("A18", "Refund scheduled")
		set("B18", record.RefundScheduledDate.Format("2006-01-02"))
	}

	if detail.Payment != nil {
		set("A20", "Owner payment order")
		set("B20", detail.Payment.OrderCode)
		set("A21", "Order amount")
		set("B21", detail.Payment.Amount.String())
		set("A22", "Order status")
		set("B22", string(detail.Payment.Status))
	}

	widths := map[string]float64{"A": 24, "B": 32}
	for col, width := range widths {
		_ = file.SetColWidth(sheet, col, col, width)
	}
	return nil
}

func (g *ExcelGenerator) writeLedger(file *excelize.File, sheet string, entries []model.BalanceTransaction) error {
	headers := []string{"Date", "Payee", "Reason", "Amount", "Balance before", "Balance after", "Description"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.UserID.String(),
			string(entry.Reason),
			entry.Amount.String(),
			entry.BalanceBefore.String(),
			entry.BalanceAfter.String(),
			entry.Description,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 38)
	_ = file.SetColWidth(sheet, "C", "G", 24)
	return nil
}

// FileName builds the download name for a statement export.
func FileName(detail service.TerminationDetail, extension string) string {
	return fmt.Sprintf("termination-%s-%s.%s",
		detail.Contract.ID.String()[:8],
		detail.Termination.CreatedAt.Format("20060102"),
		extension,
	)
}
