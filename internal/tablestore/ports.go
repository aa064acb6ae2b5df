// Package tablestore abstracts the remote table store the dashboard uses
// as its database. Tables are addressed by name, rows positionally, with
// row 1 holding the header.
package tablestore

import (
	"context"
	"errors"
)

// ErrTableNotFound reports a read against a table that does not exist.
// Callers recover by creating the table with its canonical header.
var ErrTableNotFound = errors.New("table not found")

// Store is the gateway to one spreadsheet-like document.
//
// All writes are remote and visible to subsequent reads. Appends are the
// normal write path; ReplaceAll and UpdateHeader exist for catalog edits
// and header patching only.
type Store interface {
	// Tables lists the table names present in the document.
	Tables(ctx context.Context) ([]string, error)

	// ReadAll returns every row of the table, header row included.
	ReadAll(ctx context.Context, table string) ([][]string, error)

	// AppendRows appends rows after the last non-empty row.
	AppendRows(ctx context.Context, table string, rows [][]string) error

	// ReplaceAll clears the table and writes the given rows, header
	// included, from row 1.
	ReplaceAll(ctx context.Context, table string, rows [][]string) error

	// UpdateHeader overwrites row 1 with the given header.
	UpdateHeader(ctx context.Context, table string, header []string) error

	// CreateTable creates an empty table with the given header.
	CreateTable(ctx context.Context, table string, header []string) error
}

// Invalidator is implemented by stores that cache reads. Callers that
// just wrote through the store use it to force the next read remote.
type Invalidator interface {
	Invalidate(table string)
}

// Invalidate drops any cached copy of the table if the store caches at
// all. Safe to call on plain stores.
func Invalidate(st Store, table string) {
	if inv, ok := st.(Invalidator); ok {
		inv.Invalidate(table)
	}
}
