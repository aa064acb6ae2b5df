package schema

import (
	"context"
	"strings"

	"balcao/internal/tablestore"
)

// Column synonym lists, in deterministic resolution order. The canonical
// English name comes first; the rest tolerate headers renamed by hand over
// the years ("Qtd" vs "Quantidade" vs "Qtde").
var (
	ColProductID   = []string{"ID", "Codigo", "Código", "SKU", "Produto"}
	ColQty         = []string{"Qty", "Qtd", "Quantidade", "Qtde"}
	ColDate        = []string{"Date", "Data"}
	ColDocument    = []string{"Document", "Documento", "Cupom", "NF"}
	ColUnitPrice   = []string{"UnitPrice", "Preco", "Preço", "PrecoUnit", "Preço Unit."}
	ColUnitCost    = []string{"UnitCost", "Custo", "CustoUnit"}
	ColCurrentCost = []string{"CurrentCost", "Custo", "CustoAtual"}
	ColSalePrice   = []string{"SalePrice", "PrecoVenda", "Preço Venda"}
	ColPayment     = []string{"Payment", "Pagamento", "FormaPagamento"}
	ColChannel     = []string{"Channel", "Canal"}
	ColCustomer    = []string{"Customer", "Cliente"}
	ColType        = []string{"Type", "Tipo"}
	ColAmount      = []string{"Amount", "Valor"}
	ColName        = []string{"Name", "Nome"}
	ColNotes       = []string{"Notes", "Obs", "Observações"}
)

// Table wraps a loaded table with header-aware access.
type Table struct {
	name   string
	header []string
	rows   [][]string
}

// Load reads a full table through the store and wraps it.
func Load(ctx context.Context, st tablestore.Store, name string) (*Table, error) {
	values, err := st.ReadAll(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewTable(name, values), nil
}

// NewTable wraps raw values; the first row is the header.
func NewTable(name string, values [][]string) *Table {
	t := &Table{name: name}
	if len(values) > 0 {
		t.header = values[0]
		t.rows = values[1:]
	}
	return t
}

func (t *Table) Name() string     { return t.name }
func (t *Table) Header() []string { return t.header }

// Rows returns the data rows (header excluded).
func (t *Table) Rows() [][]string { return t.rows }

// Resolve finds the column index for a list of acceptable header names.
// Exact matches win over case-insensitive ones, in candidate order; a miss
// means the dependent feature is skipped, never an error.
func (t *Table) Resolve(candidates ...string) (int, bool) {
	for _, want := range candidates {
		for i, have := range t.header {
			if strings.TrimSpace(have) == want {
				return i, true
			}
		}
	}
	for _, want := range candidates {
		for i, have := range t.header {
			if strings.EqualFold(strings.TrimSpace(have), want) {
				return i, true
			}
		}
	}
	return -1, false
}

// Cell returns the trimmed cell at idx, tolerating ragged rows.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
