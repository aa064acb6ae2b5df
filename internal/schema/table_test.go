package schema

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		candidates []string
		want       int
		wantOK     bool
	}{
		{"exact first candidate", []string{"Date", "ID", "Qty"}, ColProductID, 1, true},
		{"synonym", []string{"Data", "Codigo", "Qtd"}, ColProductID, 1, true},
		{"exact beats case insensitive", []string{"id", "ID"}, []string{"ID"}, 1, true},
		{"case insensitive fallback", []string{"qty"}, ColQty, 0, true},
		{"candidate order wins over column order", []string{"Qtd", "Qty"}, ColQty, 1, true},
		{"trimmed header", []string{" Qty "}, ColQty, 0, true},
		{"missing", []string{"Foo", "Bar"}, ColQty, -1, false},
		{"empty header", nil, ColQty, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable("x", [][]string{tt.header})
			got, ok := table.Resolve(tt.candidates...)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%v) = (%d, %v), want (%d, %v)",
					tt.candidates, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCellRaggedRows(t *testing.T) {
	row := []string{"a", " b "}
	if got := Cell(row, 1); got != "b" {
		t.Errorf("Cell trimmed = %q, want b", got)
	}
	if got := Cell(row, 5); got != "" {
		t.Errorf("Cell out of range = %q, want empty", got)
	}
	if got := Cell(row, -1); got != "" {
		t.Errorf("Cell negative = %q, want empty", got)
	}
}

func TestNewTableEmpty(t *testing.T) {
	table := NewTable("x", nil)
	if len(table.Rows()) != 0 {
		t.Errorf("empty table has %d rows", len(table.Rows()))
	}
	if _, ok := table.Resolve("ID"); ok {
		t.Error("resolve on empty table must miss")
	}
}
