package services

import (
	"context"
	"fmt"
	"strconv"

	"balcao/internal/core"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/tablestore"
)

// Default parameters seeded into the Config table when absent.
var defaultConfig = map[string]string{
	"card-fee-percent":      "0.023",
	"target-margin-percent": "0.35",
	"default-channel":       "balcao",
}

// CatalogService manages products, suppliers and the Config table.
type CatalogService struct {
	store  tablestore.Store
	logger *log.Logger
}

func NewCatalogService(store tablestore.Store, logger *log.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger.WithComponent(log.ComponentCatalog),
	}
}

// Products reads the whole catalog. Rows without an ID are skipped.
func (s *CatalogService) Products(ctx context.Context) ([]core.Product, error) {
	t, err := schema.Load(ctx, s.store, schema.TableProducts)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	idCol, ok := t.Resolve(schema.ColProductID...)
	if !ok {
		s.logger.Warn("Products table has no resolvable ID column")
		return nil, nil
	}
	nameCol, _ := t.Resolve(schema.ColName...)
	categoryCol, _ := t.Resolve("Category", "Categoria")
	unitCol, _ := t.Resolve("Unit", "Unidade")
	supplierCol, _ := t.Resolve("Supplier", "Fornecedor")
	costCol, _ := t.Resolve(schema.ColCurrentCost...)
	priceCol, _ := t.Resolve(schema.ColSalePrice...)
	markupCol, _ := t.Resolve("Markup%", "Markup")
	marginCol, _ := t.Resolve("Margin%", "Margem")
	stockCol, _ := t.Resolve("CurrentStock", "Estoque")
	minCol, _ := t.Resolve("MinStock", "EstoqueMin")
	leadCol, _ := t.Resolve("LeadTimeDays", "Prazo")
	activeCol, _ := t.Resolve("Active", "Ativo")

	var products []core.Product
	for _, row := range t.Rows() {
		id := schema.Cell(row, idCol)
		if id == "" {
			continue
		}
		products = append(products, core.Product{
			ID:           id,
			Name:         schema.Cell(row, nameCol),
			Category:     schema.Cell(row, categoryCol),
			Unit:         schema.Cell(row, unitCol),
			Supplier:     schema.Cell(row, supplierCol),
			CurrentCost:  core.ToNumber(schema.Cell(row, costCol)),
			SalePrice:    core.ToNumber(schema.Cell(row, priceCol)),
			MarkupPct:    core.ToNumber(schema.Cell(row, markupCol)),
			MarginPct:    core.ToNumber(schema.Cell(row, marginCol)),
			CurrentStock: core.ToNumber(schema.Cell(row, stockCol)),
			MinStock:     core.ToNumber(schema.Cell(row, minCol)),
			LeadTimeDays: int(core.ToNumber(schema.Cell(row, leadCol))),
			Active:       core.ToBool(schema.Cell(row, activeCol)),
		})
	}
	return products, nil
}

// ProductByID returns the catalog row for one product.
func (s *CatalogService) ProductByID(ctx context.Context, id string) (core.Product, bool, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return core.Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return core.Product{}, false, nil
}

// SaveProduct inserts or updates a catalog row, keyed by ID. Products are
// never hard-deleted; deactivation flips the Active flag.
func (s *CatalogService) SaveProduct(ctx context.Context, p core.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	rows, err := s.store.ReadAll(ctx, schema.TableProducts)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	t := schema.NewTable(schema.TableProducts, rows)
	idCol, ok := t.Resolve(schema.ColProductID...)
	if !ok {
		idCol = 0
	}

	newRow := productRow(p)
	for i := 1; i < len(rows); i++ {
		if schema.Cell(rows[i], idCol) == p.ID {
			rows[i] = newRow
			if err := s.store.ReplaceAll(ctx, schema.TableProducts, rows); err != nil {
				return fmt.Errorf("rewrite products: %w", err)
			}
			tablestore.Invalidate(s.store, schema.TableProducts)
			s.logger.InfoContext(ctx, "Product updated", log.FieldProductID, p.ID)
			return nil
		}
	}

	if err := s.store.AppendRows(ctx, schema.TableProducts, [][]string{newRow}); err != nil {
		return fmt.Errorf("append product: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableProducts)
	s.logger.InfoContext(ctx, "Product created", log.FieldProductID, p.ID)
	return nil
}

// Suppliers reads the supplier directory.
func (s *CatalogService) Suppliers(ctx context.Context) ([]core.Supplier, error) {
	t, err := schema.Load(ctx, s.store, schema.TableSuppliers)
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	nameCol, ok := t.Resolve(schema.ColName...)
	if !ok {
		return nil, nil
	}
	taxCol, _ := t.Resolve("TaxID", "CNPJ")
	contactCol, _ := t.Resolve("Contact", "Contato")
	phoneCol, _ := t.Resolve("Phone", "Telefone")
	emailCol, _ := t.Resolve("Email")
	leadCol, _ := t.Resolve("LeadTimeDays", "Prazo")
	notesCol, _ := t.Resolve(schema.ColNotes...)

	var suppliers []core.Supplier
	for _, row := range t.Rows() {
		name := schema.Cell(row, nameCol)
		if name == "" {
			continue
		}
		suppliers = append(suppliers, core.Supplier{
			Name:         name,
			TaxID:        schema.Cell(row, taxCol),
			Contact:      schema.Cell(row, contactCol),
			Phone:        schema.Cell(row, phoneCol),
			Email:        schema.Cell(row, emailCol),
			LeadTimeDays: int(core.ToNumber(schema.Cell(row, leadCol))),
			Notes:        schema.Cell(row, notesCol),
		})
	}
	return suppliers, nil
}

// SaveSupplier inserts or updates a supplier, keyed by name.
func (s *CatalogService) SaveSupplier(ctx context.Context, sup core.Supplier) error {
	if sup.Name == "" {
		return fmt.Errorf("empty supplier name")
	}

	rows, err := s.store.ReadAll(ctx, schema.TableSuppliers)
	if err != nil {
		return fmt.Errorf("load suppliers: %w", err)
	}
	t := schema.NewTable(schema.TableSuppliers, rows)
	nameCol, ok := t.Resolve(schema.ColName...)
	if !ok {
		nameCol = 0
	}

	newRow := supplierRow(sup)
	for i := 1; i < len(rows); i++ {
		if schema.Cell(rows[i], nameCol) == sup.Name {
			rows[i] = newRow
			if err := s.store.ReplaceAll(ctx, schema.TableSuppliers, rows); err != nil {
				return fmt.Errorf("rewrite suppliers: %w", err)
			}
			tablestore.Invalidate(s.store, schema.TableSuppliers)
			return nil
		}
	}
	if err := s.store.AppendRows(ctx, schema.TableSuppliers, [][]string{newRow}); err != nil {
		return fmt.Errorf("append supplier: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableSuppliers)
	return nil
}

// EnsureConfigDefaults seeds missing Config parameters once at startup.
func (s *CatalogService) EnsureConfigDefaults(ctx context.Context) error {
	values, err := s.ConfigValues(ctx)
	if err != nil {
		return err
	}
	var missing [][]string
	for key, value := range defaultConfig {
		if _, ok := values[key]; !ok {
			missing = append(missing, []string{key, value})
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := s.store.AppendRows(ctx, schema.TableConfig, missing); err != nil {
		return fmt.Errorf("seed config: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableConfig)
	s.logger.InfoContext(ctx, "Seeded default config parameters", "count", len(missing))
	return nil
}

// ConfigValues returns the raw Config table as a key/value map.
func (s *CatalogService) ConfigValues(ctx context.Context) (map[string]string, error) {
	t, err := schema.Load(ctx, s.store, schema.TableConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	keyCol, ok := t.Resolve("Parameter", "Parametro", "Chave")
	if !ok {
		keyCol = 0
	}
	valueCol, ok := t.Resolve("Value", "Valor")
	if !ok {
		valueCol = 1
	}
	values := make(map[string]string)
	for _, row := range t.Rows() {
		key := schema.Cell(row, keyCol)
		if key == "" {
			continue
		}
		values[key] = schema.Cell(row, valueCol)
	}
	return values, nil
}

// ConfigNumber reads a numeric parameter, falling back to the seeded
// default when the cell is absent or unparseable.
func (s *CatalogService) ConfigNumber(ctx context.Context, key string) (float64, error) {
	values, err := s.ConfigValues(ctx)
	if err != nil {
		return 0, err
	}
	if raw, ok := values[key]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
		return core.ToNumber(raw), nil
	}
	return core.ToNumber(defaultConfig[key]), nil
}

// DefaultChannel reads the configured sale channel.
func (s *CatalogService) DefaultChannel(ctx context.Context) string {
	values, err := s.ConfigValues(ctx)
	if err != nil {
		return defaultConfig["default-channel"]
	}
	if ch, ok := values["default-channel"]; ok && ch != "" {
		return ch
	}
	return defaultConfig["default-channel"]
}

func productRow(p core.Product) []string {
	active := "no"
	if p.Active {
		active = "yes"
	}
	return []string{
		p.ID,
		p.Name,
		p.Category,
		p.Unit,
		p.Supplier,
		core.FormatNumber(p.CurrentCost),
		core.FormatNumber(p.SalePrice),
		core.FormatNumber(p.MarkupPct),
		core.FormatNumber(p.MarginPct),
		core.FormatNumber(p.CurrentStock),
		core.FormatNumber(p.MinStock),
		strconv.Itoa(p.LeadTimeDays),
		active,
	}
}

func supplierRow(s core.Supplier) []string {
	return []string{
		s.Name,
		s.TaxID,
		s.Contact,
		s.Phone,
		s.Email,
		strconv.Itoa(s.LeadTimeDays),
		s.Notes,
	}
}
