package services

import (
	"context"
	"testing"
	"time"

	"balcao/internal/core"
	"balcao/internal/schema"
	"balcao/internal/tablestore"
)

func TestSaveProductInsertThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewCatalogService(store, testLogger())

	p := core.Product{ID: "P1", Name: "Coxinha", SalePrice: 5, MinStock: 10, Active: true}
	if err := svc.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct insert: %v", err)
	}

	p.SalePrice = 6
	if err := svc.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct update: %v", err)
	}

	products, err := svc.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1 (update must not duplicate)", len(products))
	}
	got := products[0]
	if got.SalePrice != 6 || got.Name != "Coxinha" || !got.Active || got.MinStock != 10 {
		t.Errorf("product = %+v", got)
	}
}

func TestSaveProductLeavesEarlierReadsIntact(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewCached(newTestStore(t), time.Minute)
	svc := NewCatalogService(store, testLogger())

	if err := svc.SaveProduct(ctx, core.Product{ID: "P1", Name: "Coxinha", SalePrice: 5, Active: true}); err != nil {
		t.Fatalf("SaveProduct insert: %v", err)
	}

	// A concurrent request's view of the table, taken before the update.
	snapshot, err := store.ReadAll(ctx, schema.TableProducts)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if err := svc.SaveProduct(ctx, core.Product{ID: "P1", Name: "Pastel", SalePrice: 6, Active: true}); err != nil {
		t.Fatalf("SaveProduct update: %v", err)
	}
	if snapshot[1][1] != "Coxinha" {
		t.Errorf("earlier snapshot rewritten in place: %q", snapshot[1][1])
	}
}

func TestSaveProductValidation(t *testing.T) {
	svc := NewCatalogService(newTestStore(t), testLogger())
	if err := svc.SaveProduct(context.Background(), core.Product{Name: "x"}); err == nil {
		t.Error("expected error for empty ID")
	}
	if err := svc.SaveProduct(context.Background(), core.Product{ID: "P1"}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestProductsParsesLocaleCells(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableProducts, [][]string{
		schema.Columns(schema.TableProducts),
		{"P1", "Coxinha", "Lanche", "un", "Atacadao", "2,50", "1.234,56", "", "", "12", "5", "3", "sim"},
		{"", "ghost row skipped", "", "", "", "", "", "", "", "", "", "", ""},
	})
	svc := NewCatalogService(store, testLogger())

	products, err := svc.Products(ctx)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1", len(products))
	}
	p := products[0]
	if p.CurrentCost != 2.5 {
		t.Errorf("cost = %v, want 2.5", p.CurrentCost)
	}
	if p.SalePrice != 1234.56 {
		t.Errorf("price = %v, want 1234.56", p.SalePrice)
	}
	if p.LeadTimeDays != 3 || !p.Active {
		t.Errorf("product = %+v", p)
	}
}

func TestSaveSupplierUpsert(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newTestStore(t), testLogger())

	sup := core.Supplier{Name: "Atacadao", Phone: "1111"}
	if err := svc.SaveSupplier(ctx, sup); err != nil {
		t.Fatalf("SaveSupplier: %v", err)
	}
	sup.Phone = "2222"
	if err := svc.SaveSupplier(ctx, sup); err != nil {
		t.Fatalf("SaveSupplier update: %v", err)
	}

	suppliers, err := svc.Suppliers(ctx)
	if err != nil {
		t.Fatalf("Suppliers: %v", err)
	}
	if len(suppliers) != 1 || suppliers[0].Phone != "2222" {
		t.Errorf("suppliers = %+v", suppliers)
	}
}

func TestEnsureConfigDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewCatalogService(store, testLogger())

	if err := svc.EnsureConfigDefaults(ctx); err != nil {
		t.Fatalf("EnsureConfigDefaults: %v", err)
	}
	values, err := svc.ConfigValues(ctx)
	if err != nil {
		t.Fatalf("ConfigValues: %v", err)
	}
	if values["card-fee-percent"] != "0.023" {
		t.Errorf("card-fee-percent = %q", values["card-fee-percent"])
	}
	if values["target-margin-percent"] != "0.35" {
		t.Errorf("target-margin-percent = %q", values["target-margin-percent"])
	}
	if values["default-channel"] != "balcao" {
		t.Errorf("default-channel = %q", values["default-channel"])
	}
}

func TestEnsureConfigDefaultsKeepsOverrides(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableConfig, [][]string{
		schema.Columns(schema.TableConfig),
		{"card-fee-percent", "0.05"},
	})
	svc := NewCatalogService(store, testLogger())

	if err := svc.EnsureConfigDefaults(ctx); err != nil {
		t.Fatalf("EnsureConfigDefaults: %v", err)
	}
	fee, err := svc.ConfigNumber(ctx, "card-fee-percent")
	if err != nil {
		t.Fatalf("ConfigNumber: %v", err)
	}
	if fee != 0.05 {
		t.Errorf("fee = %v, want the hand-edited 0.05", fee)
	}
	// Missing keys still seeded.
	if ch := svc.DefaultChannel(ctx); ch != "balcao" {
		t.Errorf("default channel = %q", ch)
	}
}

func TestConfigNumberFallsBackOnGarbage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Seed(schema.TableConfig, [][]string{
		schema.Columns(schema.TableConfig),
		{"card-fee-percent", "0,023"},
	})
	svc := NewCatalogService(store, testLogger())

	fee, err := svc.ConfigNumber(ctx, "card-fee-percent")
	if err != nil {
		t.Fatalf("ConfigNumber: %v", err)
	}
	if fee != 0.023 {
		t.Errorf("fee = %v, want 0.023 (comma decimal accepted)", fee)
	}
}
