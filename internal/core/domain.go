package core

import (
	"errors"
	"strings"
	"time"
)

// Movement types recorded in the StockMovements audit trail.
const (
	MovementEntry      = "entry"
	MovementExit       = "exit"
	MovementAdjustment = "adjustment"
)

// Credit ledger entry types.
const (
	CreditCharge  = "charge"
	CreditPayment = "payment"
)

// PaymentFiado marks a checkout settled on store credit.
const PaymentFiado = "fiado"

type (
	// Product is a catalog row. CurrentStock is a cached, informational
	// value: true stock is always recomputed from the ledgers.
	Product struct {
		ID           string
		Name         string
		Category     string
		Unit         string
		Supplier     string
		CurrentCost  float64
		SalePrice    float64
		MarkupPct    float64
		MarginPct    float64
		CurrentStock float64
		MinStock     float64
		LeadTimeDays int
		Active       bool
	}

	// Purchase is an append-only entry in the purchases ledger.
	Purchase struct {
		Date       time.Time
		DocRef     string
		Supplier   string
		ProductID  string
		Qty        float64
		UnitCost   float64
		Freight    float64
		OtherCosts float64
		Notes      string
	}

	// Sale is one line of a checkout. Lines of the same checkout share
	// a Document.
	Sale struct {
		Date          time.Time
		Document      string
		ProductID     string
		Qty           float64
		UnitPrice     float64
		Channel       string
		Payment       string
		FeePct        float64
		Discount      float64
		CustomerNotes string
	}

	// StockMovement is the audit trail written alongside sales, purchases
	// and adjustments. It is never read back for balance computation.
	StockMovement struct {
		Date         time.Time
		ProductID    string
		Type         string
		Qty          float64
		Document     string
		Origin       string
		Notes        string
		BalanceAfter float64
	}

	// Adjustment is a signed manual stock correction.
	Adjustment struct {
		Date        time.Time
		ProductID   string
		Qty         float64
		Reason      string
		Responsible string
		Notes       string
	}

	Supplier struct {
		Name         string
		TaxID        string
		Contact      string
		Phone        string
		Email        string
		LeadTimeDays int
		Notes        string
	}

	// CreditEntry is one row of the per-customer fiado ledger.
	CreditEntry struct {
		Date     time.Time
		Customer string
		Type     string
		Amount   float64
		Document string
		Notes    string
	}

	// CartLine is a single product line while a cart is being built.
	CartLine struct {
		ProductID string
		Qty       float64
		UnitPrice float64
	}
)

var (
	ErrEmptyProductID = errors.New("empty product id")
	ErrInvalidQty     = errors.New("quantity must be positive")
	ErrEmptyCustomer  = errors.New("empty customer")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyProductID
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("empty product name")
	}
	return nil
}

func (p Purchase) Validate() error {
	if strings.TrimSpace(p.ProductID) == "" {
		return ErrEmptyProductID
	}
	if p.Qty <= 0 {
		return ErrInvalidQty
	}
	return nil
}

func (a Adjustment) Validate() error {
	if strings.TrimSpace(a.ProductID) == "" {
		return ErrEmptyProductID
	}
	if a.Qty == 0 {
		return errors.New("adjustment quantity cannot be zero")
	}
	if strings.TrimSpace(a.Reason) == "" {
		return errors.New("empty adjustment reason")
	}
	return nil
}

func (l CartLine) Validate() error {
	if strings.TrimSpace(l.ProductID) == "" {
		return ErrEmptyProductID
	}
	if l.Qty <= 0 {
		return ErrInvalidQty
	}
	if l.UnitPrice < 0 {
		return errors.New("negative unit price")
	}
	return nil
}

// Subtotal returns the line amount.
func (l CartLine) Subtotal() float64 {
	return l.Qty * l.UnitPrice
}

func (e CreditEntry) Validate() error {
	if strings.TrimSpace(e.Customer) == "" {
		return ErrEmptyCustomer
	}
	if e.Type != CreditCharge && e.Type != CreditPayment {
		return errors.New("invalid credit entry type")
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
