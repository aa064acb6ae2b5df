package services

import (
	"context"
	"testing"
	"time"

	"balcao/internal/schema"
	"balcao/internal/tablestore/memory"
)

func seedReportFixture(t *testing.T) *memory.Store {
	t.Helper()
	store := newTestStore(t)
	store.Seed(schema.TableProducts, [][]string{
		schema.Columns(schema.TableProducts),
		{"P1", "Coxinha", "Lanche", "un", "", "2", "5", "", "", "", "", "", "yes"},
		{"P2", "Refri", "Bebida", "un", "", "3", "6", "", "", "", "", "", "yes"},
	})
	store.Seed(schema.TableSales, [][]string{
		schema.Columns(schema.TableSales),
		{"01/06/2025", "D1", "P1", "2", "5", "balcao", "pix", "0", "0", ""},
		{"01/06/2025", "D1", "P2", "1", "6", "balcao", "pix", "0", "0", ""},
		{"02/06/2025", "D2", "P1", "3", "5", "balcao", "cartao", "0.023", "0", ""},
		{"03/06/2025", "D3", "P2", "4", "6", "balcao", "fiado", "0", "0", "Maria"},
		{"04/06/2025", "D4", "P1", "1", "5", "balcao", "pix", "0", "0", ""},
	})
	return store
}

func date(d, m, y int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestCloseCashRegisterBoundariesInclusive(t *testing.T) {
	ctx := context.Background()
	store := seedReportFixture(t)
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	closing, err := svc.CloseCashRegister(ctx, date(1, 6, 2025), date(3, 6, 2025))
	if err != nil {
		t.Fatalf("CloseCashRegister: %v", err)
	}

	// D4 on 04/06 is out of range; D1 has two lines.
	if closing.SaleCount != 3 {
		t.Errorf("sale count = %d, want 3", closing.SaleCount)
	}
	// 2*5 + 1*6 + 3*5 + 4*6 = 55
	if closing.Revenue != 55 {
		t.Errorf("revenue = %v, want 55", closing.Revenue)
	}
	if !closing.ProfitAvailable {
		t.Fatal("profit must be available when every product has a cost")
	}
	// costs: P1=2, P2=3 → profit 55 - (2*2 + 1*3 + 3*2 + 4*3) = 55 - 25 = 30
	if closing.GrossProfit != 30 {
		t.Errorf("gross profit = %v, want 30", closing.GrossProfit)
	}
}

func TestCloseCashRegisterByPayment(t *testing.T) {
	ctx := context.Background()
	store := seedReportFixture(t)
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	closing, err := svc.CloseCashRegister(ctx, date(1, 6, 2025), date(4, 6, 2025))
	if err != nil {
		t.Fatalf("CloseCashRegister: %v", err)
	}

	want := map[string]float64{"cartao": 15, "fiado": 24, "pix": 21}
	if len(closing.ByPayment) != len(want) {
		t.Fatalf("by payment = %v", closing.ByPayment)
	}
	for _, p := range closing.ByPayment {
		if want[p.Payment] != p.Total {
			t.Errorf("%s = %v, want %v", p.Payment, p.Total, want[p.Payment])
		}
	}
}

func TestCloseCashRegisterTopProducts(t *testing.T) {
	ctx := context.Background()
	store := seedReportFixture(t)
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	closing, err := svc.CloseCashRegister(ctx, date(1, 6, 2025), date(4, 6, 2025))
	if err != nil {
		t.Fatalf("CloseCashRegister: %v", err)
	}
	if len(closing.TopProducts) != 2 {
		t.Fatalf("top products = %v", closing.TopProducts)
	}
	// P1 sold 6, P2 sold 5.
	if closing.TopProducts[0].ProductID != "P1" || closing.TopProducts[0].Qty != 6 {
		t.Errorf("top[0] = %+v", closing.TopProducts[0])
	}
	if closing.TopProducts[0].Name != "Coxinha" {
		t.Errorf("top[0] name = %q", closing.TopProducts[0].Name)
	}
}

func TestCloseCashRegisterProfitUnavailable(t *testing.T) {
	ctx := context.Background()
	store := seedReportFixture(t)
	// Drop P2's cost.
	store.Seed(schema.TableProducts, [][]string{
		schema.Columns(schema.TableProducts),
		{"P1", "Coxinha", "", "", "", "2", "5", "", "", "", "", "", "yes"},
		{"P2", "Refri", "", "", "", "", "6", "", "", "", "", "", "yes"},
	})
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	closing, err := svc.CloseCashRegister(ctx, date(1, 6, 2025), date(4, 6, 2025))
	if err != nil {
		t.Fatalf("CloseCashRegister: %v", err)
	}
	if closing.ProfitAvailable {
		t.Error("profit must be unavailable when a sold product has no cost")
	}
	if closing.GrossProfit != 0 {
		t.Errorf("withheld profit = %v, want 0", closing.GrossProfit)
	}
	if closing.Revenue != 76 {
		t.Errorf("revenue = %v, want 76", closing.Revenue)
	}
}

func TestCloseCashRegisterInvalidRange(t *testing.T) {
	store := seedReportFixture(t)
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	if _, err := svc.CloseCashRegister(context.Background(), date(5, 6, 2025), date(1, 6, 2025)); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestSalesDetailSortedAndFiltered(t *testing.T) {
	ctx := context.Background()
	store := seedReportFixture(t)
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	sales, err := svc.SalesDetail(ctx, date(2, 6, 2025), date(4, 6, 2025))
	if err != nil {
		t.Fatalf("SalesDetail: %v", err)
	}
	if len(sales) != 3 {
		t.Fatalf("sales = %d, want 3", len(sales))
	}
	for i := 1; i < len(sales); i++ {
		if sales[i].Date.Before(sales[i-1].Date) {
			t.Errorf("sales not sorted: %v before %v", sales[i].Date, sales[i-1].Date)
		}
	}
}

func TestSalesDetailSkipsBadDates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableSales, [][]string{
		schema.Columns(schema.TableSales),
		{"2025-06-01", "D1", "P1", "1", "5", "", "pix", "", "", ""},
		{"01/06/2025", "D2", "P1", "1", "5", "", "pix", "", "", ""},
		{"", "D3", "P1", "1", "5", "", "pix", "", "", ""},
	})
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	sales, err := svc.SalesDetail(ctx, date(1, 6, 2025), date(30, 6, 2025))
	if err != nil {
		t.Fatalf("SalesDetail: %v", err)
	}
	if len(sales) != 1 {
		t.Errorf("sales = %d, want 1 (ISO and blank dates skipped)", len(sales))
	}
}

func TestCloseCashRegisterPriceFallback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableProducts, [][]string{
		schema.Columns(schema.TableProducts),
		{"P1", "Coxinha", "", "", "", "2", "5", "", "", "", "", "", "yes"},
	})
	// Legacy sheet without a price column.
	store.Seed(schema.TableSales, [][]string{
		{"Date", "Document", "ID", "Qty"},
		{"01/06/2025", "D1", "P1", "2"},
	})
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	closing, err := svc.CloseCashRegister(ctx, date(1, 6, 2025), date(1, 6, 2025))
	if err != nil {
		t.Fatalf("CloseCashRegister: %v", err)
	}
	// Falls back to the catalog sale price: 2 * 5.
	if closing.Revenue != 10 {
		t.Errorf("revenue = %v, want 10", closing.Revenue)
	}
}

func TestCloseCashRegisterKeepsExplicitZeroPrice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableProducts, [][]string{
		schema.Columns(schema.TableProducts),
		{"P1", "Coxinha", "", "", "", "2", "5", "", "", "", "", "", "yes"},
	})
	// Comped sale: the price column exists and the row really says 0.
	store.Seed(schema.TableSales, [][]string{
		schema.Columns(schema.TableSales),
		{"01/06/2025", "D1", "P1", "2", "0", "balcao", "pix", "0", "0", "cortesia"},
	})
	catalog := NewCatalogService(store, testLogger())
	svc := NewReportService(store, catalog, testLogger())

	closing, err := svc.CloseCashRegister(ctx, date(1, 6, 2025), date(1, 6, 2025))
	if err != nil {
		t.Fatalf("CloseCashRegister: %v", err)
	}
	if closing.Revenue != 0 {
		t.Errorf("revenue = %v, want 0 (zero-priced row must not be re-priced)", closing.Revenue)
	}
	// Giving away stock with a known cost is a loss, not zero profit.
	if !closing.ProfitAvailable || closing.GrossProfit != -4 {
		t.Errorf("profit = %v (available %v), want -4", closing.GrossProfit, closing.ProfitAvailable)
	}
}
