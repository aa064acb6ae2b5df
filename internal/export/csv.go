// Package export renders report data as downloadable CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"balcao/internal/core"
	"balcao/internal/services"
)

// utf8BOM makes Excel open the CSV with the right encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var salesHeader = []string{
	"Date", "Document", "ID", "Qty", "UnitPrice", "Subtotal",
	"Channel", "Payment", "Fee%", "Discount", "CustomerNotes",
}

// SalesCSV writes the sales detail as CSV, prefixed with a UTF-8 BOM.
func SalesCSV(w io.Writer, sales []core.Sale) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range sales {
		if err := cw.Write(salesRecord(s)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ClosingCSV writes the cash-closing summary as CSV.
func ClosingCSV(w io.Writer, c *services.CashClosing) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"From", core.FormatDate(c.From)},
		{"To", core.FormatDate(c.To)},
		{"Sales", fmt.Sprintf("%d", c.SaleCount)},
		{"Revenue", core.FormatNumber(c.Revenue)},
	}
	if c.ProfitAvailable {
		rows = append(rows, []string{"GrossProfit", core.FormatNumber(c.GrossProfit)})
	} else {
		rows = append(rows, []string{"GrossProfit", "unavailable"})
	}
	rows = append(rows, []string{})
	rows = append(rows, []string{"Payment", "Total"})
	for _, p := range c.ByPayment {
		rows = append(rows, []string{p.Payment, core.FormatNumber(p.Total)})
	}
	rows = append(rows, []string{})
	rows = append(rows, []string{"ProductID", "Name", "Qty", "Revenue"})
	for _, p := range c.TopProducts {
		rows = append(rows, []string{p.ProductID, p.Name, core.FormatNumber(p.Qty), core.FormatNumber(p.Revenue)})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func salesRecord(s core.Sale) []string {
	return []string{
		core.FormatDate(s.Date),
		s.Document,
		s.ProductID,
		core.FormatNumber(s.Qty),
		core.FormatNumber(s.UnitPrice),
		core.FormatNumber(s.Qty * s.UnitPrice),
		s.Channel,
		s.Payment,
		core.FormatNumber(s.FeePct),
		core.FormatNumber(s.Discount),
		s.CustomerNotes,
	}
}
