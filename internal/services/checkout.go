package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"balcao/internal/amqp"
	"balcao/internal/core"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/tablestore"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrLineNotFound     = errors.New("cart line not found")
	ErrFiadoNeedsClient = errors.New("fiado checkout requires a customer name")
)

// Notifier publishes a checkout summary to interested consumers.
// Publishing is best-effort: a failure is logged and never rolls back
// the recorded sale.
type Notifier interface {
	PublishCheckout(ctx context.Context, msg *amqp.CheckoutMessage) error
}

// Cart accumulates lines for one checkout. Safe for concurrent use; a
// confirmed cart starts empty again.
type Cart struct {
	mu    sync.Mutex
	lines []core.CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AddLine appends a line, merging quantity into an existing line for the
// same product at the same price.
func (c *Cart) AddLine(line core.CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.lines {
		if existing.ProductID == line.ProductID && existing.UnitPrice == line.UnitPrice {
			c.lines[i].Qty += line.Qty
			return nil
		}
	}
	c.lines = append(c.lines, line)
	return nil
}

// UpdateQty replaces the quantity of a product's line.
func (c *Cart) UpdateQty(productID string, qty float64) error {
	if qty <= 0 {
		return core.ErrInvalidQty
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Qty = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine drops a product's line from the cart.
func (c *Cart) RemoveLine(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []core.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.CartLine(nil), c.lines...)
}

// Total sums all line subtotals.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// CheckoutRequest captures everything besides the lines needed to confirm
// a sale.
type CheckoutRequest struct {
	Payment  string
	Customer string
	Channel  string
	Discount float64
}

// CheckoutResult summarizes a confirmed checkout.
type CheckoutResult struct {
	Document string
	Total    float64
	Lines    int
}

// CheckoutService turns a built cart into ledger rows: one Sales row per
// line under a shared document ID, one exit movement per line, and a
// fiado charge when the sale is on store credit.
type CheckoutService struct {
	store    tablestore.Store
	stock    *StockService
	fiado    *FiadoService
	catalog  *CatalogService
	notifier Notifier
	logger   *log.Logger

	now   func() time.Time
	newID func(time.Time) string
}

func NewCheckoutService(store tablestore.Store, stock *StockService, fiado *FiadoService, catalog *CatalogService, notifier Notifier, logger *log.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		stock:    stock,
		fiado:    fiado,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentCheckout),
		now:      time.Now,
		newID:    newDocumentID,
	}
}

// newDocumentID builds a sortable, collision-resistant checkout document:
// a second-resolution timestamp plus a UUID fragment.
func newDocumentID(at time.Time) string {
	return at.Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// Confirm records the cart as a completed sale and clears it.
//
// Row appends are not transactional across tables: a failure mid-way can
// leave sales recorded without movements. Appends never corrupt existing
// rows, so the recovery is reconciling from the Sales ledger, which is
// the source of truth for stock anyway.
func (s *CheckoutService) Confirm(ctx context.Context, cart *Cart, req CheckoutRequest) (*CheckoutResult, error) {
	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("line %s: %w", l.ProductID, err)
		}
	}

	payment := strings.ToLower(strings.TrimSpace(req.Payment))
	if payment == "" {
		return nil, errors.New("empty payment method")
	}
	customer := strings.TrimSpace(req.Customer)
	if payment == core.PaymentFiado && customer == "" {
		return nil, ErrFiadoNeedsClient
	}

	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = s.catalog.DefaultChannel(ctx)
	}

	feePct := 0.0
	if isCardPayment(payment) {
		fee, err := s.catalog.ConfigNumber(ctx, "card-fee-percent")
		if err != nil {
			s.logger.Warn("Card fee lookup failed, recording zero fee", "error", err)
		} else {
			feePct = fee
		}
	}

	at := s.now()
	document := s.newID(at)

	var total float64
	saleRows := make([][]string, 0, len(lines))
	for _, l := range lines {
		total += l.Subtotal()
		saleRows = append(saleRows, saleRow(core.Sale{
			Date:          at,
			Document:      document,
			ProductID:     l.ProductID,
			Qty:           l.Qty,
			UnitPrice:     l.UnitPrice,
			Channel:       channel,
			Payment:       payment,
			FeePct:        feePct,
			Discount:      req.Discount,
			CustomerNotes: customer,
		}))
	}
	if err := s.store.AppendRows(ctx, schema.TableSales, saleRows); err != nil {
		return nil, fmt.Errorf("append sales: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableSales)

	movementRows := make([][]string, 0, len(lines))
	for _, l := range lines {
		balance, err := s.stock.ComputeStock(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("recompute stock for %s: %w", l.ProductID, err)
		}
		movementRows = append(movementRows, movementRow(core.StockMovement{
			Date:         at,
			ProductID:    l.ProductID,
			Type:         core.MovementExit,
			Qty:          l.Qty,
			Document:     document,
			Origin:       "sale",
			BalanceAfter: balance,
		}))
	}
	if err := s.store.AppendRows(ctx, schema.TableMovements, movementRows); err != nil {
		return nil, fmt.Errorf("append stock movements: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableMovements)

	if payment == core.PaymentFiado {
		err := s.fiado.Charge(ctx, core.CreditEntry{
			Date:     at,
			Customer: customer,
			Amount:   total,
			Document: document,
		})
		if err != nil {
			return nil, fmt.Errorf("record fiado charge: %w", err)
		}
	}

	s.notify(ctx, document, payment, customer, channel, total, lines, at)

	cart.Clear()

	s.logger.InfoContext(ctx, "Checkout confirmed",
		log.FieldDocument, document,
		log.FieldPayment, payment,
		log.FieldTotal, total,
		log.FieldLineCount, len(lines))

	return &CheckoutResult{Document: document, Total: total, Lines: len(lines)}, nil
}

func (s *CheckoutService) notify(ctx context.Context, document, payment, customer, channel string, total float64, lines []core.CartLine, at time.Time) {
	if s.notifier == nil {
		return
	}
	msg := &amqp.CheckoutMessage{
		Document:  document,
		Payment:   payment,
		Customer:  customer,
		Channel:   channel,
		Total:     total,
		Timestamp: at,
	}
	for _, l := range lines {
		msg.Lines = append(msg.Lines, amqp.CheckoutLine{
			ProductID: l.ProductID,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	if err := s.notifier.PublishCheckout(ctx, msg); err != nil {
		s.logger.Warn("Checkout notification failed",
			log.FieldDocument, document,
			"error", err)
	}
}

func isCardPayment(payment string) bool {
	switch payment {
	case "cartao", "cartão", "card", "credito", "crédito", "debito", "débito":
		return true
	}
	return false
}

func saleRow(s core.Sale) []string {
	return []string{
		core.FormatDate(s.Date),
		s.Document,
		s.ProductID,
		core.FormatNumber(s.Qty),
		core.FormatNumber(s.UnitPrice),
		s.Channel,
		s.Payment,
		core.FormatNumber(s.FeePct),
		core.FormatNumber(s.Discount),
		s.CustomerNotes,
	}
}
