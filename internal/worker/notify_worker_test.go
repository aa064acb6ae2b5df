package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"balcao/internal/amqp"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/services"
	"balcao/internal/tablestore/memory"
)

func newWorkerFixture(t *testing.T) (*NotifyWorker, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := schema.EnsureAll(context.Background(), store); err != nil {
		t.Fatalf("schema bootstrap: %v", err)
	}
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	catalog := services.NewCatalogService(store, logger)
	stock := services.NewStockService(store, logger)
	return NewNotifyWorker(catalog, stock, logger), store
}

func TestHandleCheckout(t *testing.T) {
	w, store := newWorkerFixture(t)
	store.Seed(schema.TableProducts, [][]string{
		schema.Columns(schema.TableProducts),
		{"P1", "Coxinha", "", "", "", "", "5", "", "", "", "10", "", "yes"},
	})
	store.Seed(schema.TableSales, [][]string{
		schema.Columns(schema.TableSales),
		{"01/06/2025", "D1", "P1", "2", "5", "balcao", "pix", "0", "0", ""},
	})

	msg := &amqp.CheckoutMessage{
		Document: "D1",
		Payment:  "pix",
		Total:    10,
		Lines:    []amqp.CheckoutLine{{ProductID: "P1", Qty: 2, UnitPrice: 5}},
	}
	if err := w.HandleCheckout(context.Background(), msg); err != nil {
		t.Fatalf("HandleCheckout: %v", err)
	}
}

func TestHandleCheckoutUnknownProduct(t *testing.T) {
	w, _ := newWorkerFixture(t)
	msg := &amqp.CheckoutMessage{
		Document: "D2",
		Lines:    []amqp.CheckoutLine{{ProductID: "ghost", Qty: 1}},
	}
	if err := w.HandleCheckout(context.Background(), msg); err != nil {
		t.Fatalf("unknown products must not fail the handler: %v", err)
	}
}
