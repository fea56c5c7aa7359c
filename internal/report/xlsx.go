package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	ledgerSheet  = "Ledger"
)

// XLSXFileName returns the download name of a monthly spreadsheet.
func XLSXFileName(month string) string {
	return "alkozay_report_" + month + ".xlsx"
}

// WriteMonthlyXLSX writes r as a workbook with a summary sheet and a ledger
// sheet.
func WriteMonthlyXLSX(w io.Writer, r Monthly) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return fmt.Errorf("failed to create ledger sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Month", r.Month},
		{"Income", r.Income.InexactFloat64()},
		{"Expense", r.Expense.InexactFloat64()},
		{"Net", r.Net.InexactFloat64()},
		{"Sales", r.SalesCount},
		{"Imports", r.ImportsCount},
		{"Bottles imported", r.TotalImported},
		{"Small imported", r.Bottles.ImportedSmall},
		{"Large imported", r.Bottles.ImportedLarge},
		{"Bottles sold", r.TotalSold},
		{"Small sold", r.Bottles.SoldSmall},
		{"Large sold", r.Bottles.SoldLarge},
		{"Current stock", r.Stock.Total},
		{"Small stock", r.Stock.Small},
		{"Large stock", r.Stock.Large},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	header := []interface{}{"Date", "Type", "Detail", "Amount"}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for i, line := range r.Lines {
		row := []interface{}{
			line.Date.UTC().Format("2006-01-02"),
			line.Type,
			line.Detail,
			line.Amount.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
