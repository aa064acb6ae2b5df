package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"balcao/internal/core"
	"balcao/internal/services"
)

const (
	sheetSales   = "Sales"
	sheetSummary = "Summary"
)

// SalesXLSX writes a workbook with the cash-closing summary and the
// per-line sales detail on separate sheets.
func SalesXLSX(w io.Writer, c *services.CashClosing, sales []core.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, c); err != nil {
		return err
	}
	if err := writeSalesSheet(f, sales); err != nil {
		return err
	}

	// Drop excelize's default sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, c *services.CashClosing) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"From", core.FormatDate(c.From)},
		{"To", core.FormatDate(c.To)},
		{"Sales", c.SaleCount},
		{"Revenue", c.Revenue},
	}
	if c.ProfitAvailable {
		rows = append(rows, []any{"GrossProfit", c.GrossProfit})
	} else {
		rows = append(rows, []any{"GrossProfit", "unavailable"})
	}
	rows = append(rows, []any{})
	rows = append(rows, []any{"Payment", "Total"})
	for _, p := range c.ByPayment {
		rows = append(rows, []any{p.Payment, p.Total})
	}
	rows = append(rows, []any{})
	rows = append(rows, []any{"ProductID", "Name", "Qty", "Revenue"})
	for _, p := range c.TopProducts {
		rows = append(rows, []any{p.ProductID, p.Name, p.Qty, p.Revenue})
	}

	return writeRows(f, sheetSummary, rows)
}

func writeSalesSheet(f *excelize.File, sales []core.Sale) error {
	if _, err := f.NewSheet(sheetSales); err != nil {
		return fmt.Errorf("create sales sheet: %w", err)
	}

	rows := [][]any{{
		"Date", "Document", "ID", "Qty", "UnitPrice", "Subtotal",
		"Channel", "Payment", "Fee%", "Discount", "CustomerNotes",
	}}
	for _, s := range sales {
		rows = append(rows, []any{
			core.FormatDate(s.Date),
			s.Document,
			s.ProductID,
			s.Qty,
			s.UnitPrice,
			s.Qty * s.UnitPrice,
			s.Channel,
			s.Payment,
			s.FeePct,
			s.Discount,
			s.CustomerNotes,
		})
	}

	return writeRows(f, sheetSales, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write sheet row: %w", err)
		}
	}
	return nil
}
