// Package worker consumes checkout notifications published by the POS.
package worker

import (
	"context"
	"fmt"

	"balcao/internal/amqp"
	"balcao/internal/log"
	"balcao/internal/services"
)

// NotifyWorker reacts to confirmed checkouts. Today it watches for
// products a sale pushed to or below their minimum stock and raises a
// restock alert; the alert sink is the structured log, which the shop
// tails into its messaging bot.
type NotifyWorker struct {
	catalog *services.CatalogService
	stock   *services.StockService
	logger  *log.Logger
}

func NewNotifyWorker(catalog *services.CatalogService, stock *services.StockService, logger *log.Logger) *NotifyWorker {
	return &NotifyWorker{
		catalog: catalog,
		stock:   stock,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCheckout processes one checkout message. Returning an error
// requeues the message, so only retryable failures propagate.
func (w *NotifyWorker) HandleCheckout(ctx context.Context, msg *amqp.CheckoutMessage) error {
	w.logger.InfoContext(ctx, "Checkout received",
		log.FieldDocument, msg.Document,
		log.FieldPayment, msg.Payment,
		log.FieldTotal, msg.Total,
		log.FieldLineCount, len(msg.Lines))

	totals, err := w.stock.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("stock snapshot: %w", err)
	}
	products, err := w.catalog.Products(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	minimums := make(map[string]float64, len(products))
	names := make(map[string]string, len(products))
	for _, p := range products {
		minimums[p.ID] = p.MinStock
		names[p.ID] = p.Name
	}

	for _, line := range msg.Lines {
		min := minimums[line.ProductID]
		if min <= 0 {
			continue
		}
		current := totals[line.ProductID]
		if current <= min {
			w.logger.WarnContext(ctx, "Restock alert",
				log.FieldProductID, line.ProductID,
				"name", names[line.ProductID],
				"current", current,
				"min_stock", min,
				log.FieldDocument, msg.Document)
		}
	}

	return nil
}
