package services

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"balcao/internal/core"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/tablestore/memory"
)

func testLogger() *log.Logger {
	return log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
}

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	if err := schema.EnsureAll(context.Background(), store); err != nil {
		t.Fatalf("schema bootstrap: %v", err)
	}
	return store
}

func TestSnapshotReconciliation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TablePurchases, [][]string{
		schema.Columns(schema.TablePurchases),
		{"01/06/2025", "NF1", "Atacadao", "P1", "10", "5", "0", "0", ""},
		{"02/06/2025", "NF2", "Atacadao", "P1", "5", "5", "0", "0", ""},
	})
	store.Seed(schema.TableSales, [][]string{
		schema.Columns(schema.TableSales),
		{"03/06/2025", "D1", "P1", "3", "9", "balcao", "pix", "0", "0", ""},
	})
	store.Seed(schema.TableAdjusts, [][]string{
		schema.Columns(schema.TableAdjusts),
		{"04/06/2025", "P1", "-1", "breakage", "Ana", ""},
	})

	svc := NewStockService(store, testLogger())
	totals, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got := totals["P1"]; got != 11 {
		t.Errorf("P1 stock = %v, want 11", got)
	}
}

func TestSnapshotRowOrderIndependent(t *testing.T) {
	ctx := context.Background()
	purchases := [][]string{
		{"01/06/2025", "NF1", "", "P1", "10", "", "", "", ""},
		{"02/06/2025", "NF2", "", "P2", "4", "", "", "", ""},
		{"03/06/2025", "NF3", "", "P1", "5", "", "", "", ""},
	}
	sales := [][]string{
		{"03/06/2025", "D1", "P1", "3", "9", "balcao", "pix", "0", "0", ""},
		{"04/06/2025", "D2", "P2", "1", "6", "balcao", "pix", "0", "0", ""},
	}
	adjusts := [][]string{
		{"04/06/2025", "P1", "-1", "breakage", "Ana", ""},
		{"05/06/2025", "P2", "2", "recount", "Ana", ""},
	}

	snapshot := func(p, s, a [][]string) map[string]float64 {
		t.Helper()
		store := newTestStore(t)
		store.Seed(schema.TablePurchases, append([][]string{schema.Columns(schema.TablePurchases)}, p...))
		store.Seed(schema.TableSales, append([][]string{schema.Columns(schema.TableSales)}, s...))
		store.Seed(schema.TableAdjusts, append([][]string{schema.Columns(schema.TableAdjusts)}, a...))
		totals, err := NewStockService(store, testLogger()).Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		return totals
	}

	base := snapshot(purchases, sales, adjusts)
	if base["P1"] != 11 || base["P2"] != 5 {
		t.Fatalf("baseline totals = %v, want P1=11 P2=5", base)
	}

	permuted := snapshot(reversed(purchases), reversed(sales), reversed(adjusts))
	if !reflect.DeepEqual(base, permuted) {
		t.Errorf("permuted ledgers changed totals: %v vs %v", base, permuted)
	}
}

func reversed(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

func TestSnapshotSynonymHeaders(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TablePurchases, [][]string{
		{"Data", "DocRef", "Fornecedor", "Codigo", "Qtd", "Custo", "", "", ""},
		{"01/06/2025", "NF1", "X", "P1", "7,5", "10", "", "", ""},
	})

	svc := NewStockService(store, testLogger())
	totals, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got := totals["P1"]; got != 7.5 {
		t.Errorf("P1 stock = %v, want 7.5", got)
	}
}

func TestSnapshotSkipsUnresolvableLedger(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableSales, [][]string{
		{"What", "Ever"},
		{"x", "y"},
	})
	store.Seed(schema.TablePurchases, [][]string{
		schema.Columns(schema.TablePurchases),
		{"01/06/2025", "", "", "P1", "4", "", "", "", ""},
	})

	svc := NewStockService(store, testLogger())
	totals, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot must not fail on a drifted ledger: %v", err)
	}
	if got := totals["P1"]; got != 4 {
		t.Errorf("P1 stock = %v, want 4", got)
	}
}

func TestRecordPurchaseWritesLedgerAndMovement(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewStockService(store, testLogger())

	p := core.Purchase{
		ProductID: "P1",
		Qty:       10,
		UnitCost:  4.5,
		Supplier:  "Atacadao",
		DocRef:    "NF7",
	}
	if err := svc.RecordPurchase(ctx, p); err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}

	purchases, _ := store.ReadAll(ctx, schema.TablePurchases)
	if len(purchases) != 2 {
		t.Fatalf("purchases rows = %d, want 2", len(purchases))
	}

	movements, _ := store.ReadAll(ctx, schema.TableMovements)
	if len(movements) != 2 {
		t.Fatalf("movement rows = %d, want 2", len(movements))
	}
	mv := movements[1]
	if mv[2] != core.MovementEntry {
		t.Errorf("movement type = %q, want entry", mv[2])
	}
	if mv[7] != "10" {
		t.Errorf("balance after = %q, want 10", mv[7])
	}
}

func TestRecordPurchaseValidation(t *testing.T) {
	svc := NewStockService(newTestStore(t), testLogger())

	if err := svc.RecordPurchase(context.Background(), core.Purchase{Qty: 1}); err == nil {
		t.Error("expected error for empty product id")
	}
	if err := svc.RecordPurchase(context.Background(), core.Purchase{ProductID: "P1", Qty: 0}); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestRegisterAdjustmentAppendsCorrection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TablePurchases, [][]string{
		schema.Columns(schema.TablePurchases),
		{"01/06/2025", "", "", "P1", "10", "", "", "", ""},
	})
	svc := NewStockService(store, testLogger())

	adj := core.Adjustment{ProductID: "P1", Qty: -2, Reason: "count", Responsible: "Ana"}
	if err := svc.RegisterAdjustment(ctx, adj); err != nil {
		t.Fatalf("RegisterAdjustment: %v", err)
	}

	// A second concurrent-style correction must append, never rewrite.
	adj2 := core.Adjustment{ProductID: "P1", Qty: 1, Reason: "recount"}
	if err := svc.RegisterAdjustment(ctx, adj2); err != nil {
		t.Fatalf("RegisterAdjustment second: %v", err)
	}

	adjusts, _ := store.ReadAll(ctx, schema.TableAdjusts)
	if len(adjusts) != 3 {
		t.Fatalf("adjustment rows = %d, want 3", len(adjusts))
	}

	current, err := svc.ComputeStock(ctx, "P1")
	if err != nil {
		t.Fatalf("ComputeStock: %v", err)
	}
	if current != 9 {
		t.Errorf("stock after adjustments = %v, want 9", current)
	}
}

func TestRegisterAdjustmentValidation(t *testing.T) {
	svc := NewStockService(newTestStore(t), testLogger())
	ctx := context.Background()

	if err := svc.RegisterAdjustment(ctx, core.Adjustment{ProductID: "P1", Qty: 0, Reason: "x"}); err == nil {
		t.Error("expected error for zero quantity")
	}
	if err := svc.RegisterAdjustment(ctx, core.Adjustment{ProductID: "P1", Qty: 1}); err == nil {
		t.Error("expected error for missing reason")
	}
}

func TestLevelsFlagsLowStock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TablePurchases, [][]string{
		schema.Columns(schema.TablePurchases),
		{"01/06/2025", "", "", "P1", "2", "", "", "", ""},
		{"01/06/2025", "", "", "P2", "50", "", "", "", ""},
	})
	svc := NewStockService(store, testLogger())

	products := []core.Product{
		{ID: "P1", Name: "Coxinha", MinStock: 5},
		{ID: "P2", Name: "Refri", MinStock: 5},
		{ID: "P3", Name: "Sem minimo"},
	}
	levels, err := svc.Levels(ctx, products)
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("levels = %d, want 3", len(levels))
	}
	if !levels[0].Low {
		t.Error("P1 at 2 with min 5 must be low")
	}
	if levels[1].Low {
		t.Error("P2 at 50 with min 5 must not be low")
	}
	if levels[2].Low {
		t.Error("P3 without a minimum must never be low")
	}
}
