// Package schema declares the canonical layout of every logical table and
// repairs drift: missing tables are created, truncated or blank headers
// are patched back to the canonical column list.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"balcao/internal/tablestore"
)

// Logical table names.
const (
	TableProducts  = "Products"
	TablePurchases = "Purchases"
	TableSales     = "Sales"
	TableMovements = "StockMovements"
	TableAdjusts   = "Adjustments"
	TableSuppliers = "Suppliers"
	TableConfig    = "Config"
	TableFiado     = "Fiado"
)

// canonical holds the ordered column list per logical table.
var canonical = map[string][]string{
	TableProducts:  {"ID", "Name", "Category", "Unit", "Supplier", "CurrentCost", "SalePrice", "Markup%", "Margin%", "CurrentStock", "MinStock", "LeadTimeDays", "Active"},
	TablePurchases: {"Date", "DocRef", "Supplier", "ID", "Qty", "UnitCost", "Freight", "OtherCosts", "Notes"},
	TableSales:     {"Date", "Document", "ID", "Qty", "UnitPrice", "Channel", "Payment", "Fee%", "Discount", "CustomerNotes"},
	TableMovements: {"Date", "ID", "Type", "Qty", "Document", "Origin", "Notes", "BalanceAfter"},
	TableAdjusts:   {"Date", "ID", "Qty", "Reason", "Responsible", "Notes"},
	TableSuppliers: {"Name", "TaxID", "Contact", "Phone", "Email", "LeadTimeDays", "Notes"},
	TableConfig:    {"Parameter", "Value"},
	TableFiado:     {"Date", "Customer", "Type", "Amount", "Document", "Notes"},
}

// AllTables lists every logical table in creation order.
func AllTables() []string {
	return []string{
		TableProducts, TablePurchases, TableSales, TableMovements,
		TableAdjusts, TableSuppliers, TableConfig, TableFiado,
	}
}

// Columns returns the canonical ordered header for a logical table.
func Columns(table string) []string {
	cols, ok := canonical[table]
	if !ok {
		return nil
	}
	return append([]string(nil), cols...)
}

// EnsureTable creates the table with its canonical header if it does not
// exist. Reports whether it was created.
func EnsureTable(ctx context.Context, st tablestore.Store, table string) (bool, error) {
	cols := canonical[table]
	if cols == nil {
		return false, fmt.Errorf("unknown table %q", table)
	}
	_, err := st.ReadAll(ctx, table)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, tablestore.ErrTableNotFound) {
		return false, err
	}
	if err := st.CreateTable(ctx, table, cols); err != nil {
		return false, fmt.Errorf("create %s: %w", table, err)
	}
	return true, nil
}

// EnsureHeaders patches row 1 back to the canonical header when the table
// is empty, has a blank first row, or carries fewer columns than declared.
// Extra columns beyond the canonical list are overwritten; that loss is a
// documented limitation of header patching. Reports whether a patch was
// written.
func EnsureHeaders(ctx context.Context, st tablestore.Store, table string) (bool, error) {
	cols := canonical[table]
	if cols == nil {
		return false, fmt.Errorf("unknown table %q", table)
	}
	rows, err := st.ReadAll(ctx, table)
	if err != nil {
		return false, err
	}
	if len(rows) > 0 && !headerBlank(rows[0]) && len(rows[0]) >= len(cols) {
		return false, nil
	}
	if err := st.UpdateHeader(ctx, table, cols); err != nil {
		return false, fmt.Errorf("patch %s header: %w", table, err)
	}
	tablestore.Invalidate(st, table)
	return true, nil
}

// EnsureAll creates missing tables and patches headers across the whole
// registry. Run once at startup.
func EnsureAll(ctx context.Context, st tablestore.Store) error {
	for _, table := range AllTables() {
		if _, err := EnsureTable(ctx, st, table); err != nil {
			return err
		}
		if _, err := EnsureHeaders(ctx, st, table); err != nil {
			return err
		}
	}
	return nil
}

func headerBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
