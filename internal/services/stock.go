// Package services implements the dashboard's business operations on top
// of the tablestore: stock reconciliation, checkout, the fiado ledger,
// reporting and catalog management.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"balcao/internal/core"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/tablestore"
)

// StockService recomputes stock from the three append-only ledgers.
// The cached CurrentStock column on Products is never consulted: replaying
// Purchases (+), Sales (−) and Adjustments (±) is idempotent and immune to
// drift from partial writes, at the cost of a full scan per view.
type StockService struct {
	store  tablestore.Store
	logger *log.Logger
}

// StockLevel pairs a product with its recomputed stock.
type StockLevel struct {
	Product core.Product
	Current float64
	Low     bool
}

func NewStockService(store tablestore.Store, logger *log.Logger) *StockService {
	return &StockService{
		store:  store,
		logger: logger.WithComponent(log.ComponentStock),
	}
}

// Snapshot computes current stock for every product ID appearing in any
// ledger. The three ledgers load concurrently; rows whose ID or quantity
// column cannot be resolved are excluded rather than failing the view.
func (s *StockService) Snapshot(ctx context.Context) (map[string]float64, error) {
	var purchases, sales, adjustments *schema.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		purchases, err = schema.Load(gctx, s.store, schema.TablePurchases)
		return err
	})
	g.Go(func() (err error) {
		sales, err = schema.Load(gctx, s.store, schema.TableSales)
		return err
	})
	g.Go(func() (err error) {
		adjustments, err = schema.Load(gctx, s.store, schema.TableAdjusts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ledgers: %w", err)
	}

	totals := make(map[string]float64)
	s.addLedger(totals, purchases, +1)
	s.addLedger(totals, sales, -1)
	s.addLedger(totals, adjustments, +1)
	return totals, nil
}

// ComputeStock returns the reconciled stock for one product.
func (s *StockService) ComputeStock(ctx context.Context, productID string) (float64, error) {
	totals, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return totals[productID], nil
}

// Levels joins a product list with the reconciled snapshot and flags
// products at or below their minimum.
func (s *StockService) Levels(ctx context.Context, products []core.Product) ([]StockLevel, error) {
	totals, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	levels := make([]StockLevel, 0, len(products))
	for _, p := range products {
		current := totals[p.ID]
		levels = append(levels, StockLevel{
			Product: p,
			Current: current,
			Low:     p.MinStock > 0 && current <= p.MinStock,
		})
	}
	return levels, nil
}

// RecordPurchase appends a purchase row and its entry movement.
func (s *StockService) RecordPurchase(ctx context.Context, p core.Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	if err := s.store.AppendRows(ctx, schema.TablePurchases, [][]string{purchaseRow(p)}); err != nil {
		return fmt.Errorf("append purchase: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TablePurchases)

	balance, err := s.ComputeStock(ctx, p.ProductID)
	if err != nil {
		return fmt.Errorf("recompute stock: %w", err)
	}
	movement := core.StockMovement{
		Date:         p.Date,
		ProductID:    p.ProductID,
		Type:         core.MovementEntry,
		Qty:          p.Qty,
		Document:     p.DocRef,
		Origin:       "purchase",
		BalanceAfter: balance,
	}
	if err := s.store.AppendRows(ctx, schema.TableMovements, [][]string{movementRow(movement)}); err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableMovements)

	s.logger.InfoContext(ctx, "Purchase recorded",
		log.FieldProductID, p.ProductID,
		"qty", p.Qty,
		"balance_after", balance)
	return nil
}

// RegisterAdjustment appends a signed correction entry and its movement.
// Counting corrections are always appends, never table rewrites, so two
// concurrent saves cannot lose each other's rows.
func (s *StockService) RegisterAdjustment(ctx context.Context, adj core.Adjustment) error {
	if err := adj.Validate(); err != nil {
		return err
	}
	if adj.Date.IsZero() {
		adj.Date = time.Now()
	}

	if err := s.store.AppendRows(ctx, schema.TableAdjusts, [][]string{adjustmentRow(adj)}); err != nil {
		return fmt.Errorf("append adjustment: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableAdjusts)

	balance, err := s.ComputeStock(ctx, adj.ProductID)
	if err != nil {
		return fmt.Errorf("recompute stock: %w", err)
	}
	movement := core.StockMovement{
		Date:         adj.Date,
		ProductID:    adj.ProductID,
		Type:         core.MovementAdjustment,
		Qty:          adj.Qty,
		Origin:       "adjustment",
		Notes:        adj.Reason,
		BalanceAfter: balance,
	}
	if err := s.store.AppendRows(ctx, schema.TableMovements, [][]string{movementRow(movement)}); err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableMovements)

	s.logger.InfoContext(ctx, "Adjustment registered",
		log.FieldProductID, adj.ProductID,
		"qty", adj.Qty,
		"reason", adj.Reason,
		"balance_after", balance)
	return nil
}

func (s *StockService) addLedger(totals map[string]float64, t *schema.Table, sign float64) {
	idCol, ok := t.Resolve(schema.ColProductID...)
	if !ok {
		s.logger.Warn("Ledger skipped: product ID column unresolved", log.FieldTable, t.Name())
		return
	}
	qtyCol, ok := t.Resolve(schema.ColQty...)
	if !ok {
		s.logger.Warn("Ledger skipped: quantity column unresolved", log.FieldTable, t.Name())
		return
	}
	for _, row := range t.Rows() {
		id := schema.Cell(row, idCol)
		if id == "" {
			continue
		}
		totals[id] += sign * core.ToNumber(schema.Cell(row, qtyCol))
	}
}

func purchaseRow(p core.Purchase) []string {
	return []string{
		core.FormatDate(p.Date),
		p.DocRef,
		p.Supplier,
		p.ProductID,
		core.FormatNumber(p.Qty),
		core.FormatNumber(p.UnitCost),
		core.FormatNumber(p.Freight),
		core.FormatNumber(p.OtherCosts),
		p.Notes,
	}
}

func adjustmentRow(a core.Adjustment) []string {
	return []string{
		core.FormatDate(a.Date),
		a.ProductID,
		core.FormatNumber(a.Qty),
		a.Reason,
		a.Responsible,
		a.Notes,
	}
}

func movementRow(m core.StockMovement) []string {
	return []string{
		core.FormatDate(m.Date),
		m.ProductID,
		m.Type,
		core.FormatNumber(m.Qty),
		m.Document,
		m.Origin,
		m.Notes,
		core.FormatNumber(m.BalanceAfter),
	}
}
