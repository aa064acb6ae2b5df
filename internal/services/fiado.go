package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"balcao/internal/core"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/tablestore"
)

// FiadoService keeps the informal store-credit ledger. Balances are never
// stored: they are the running sum of charges minus payments per customer.
type FiadoService struct {
	store  tablestore.Store
	logger *log.Logger
}

// CustomerBalance is one customer's outstanding credit.
type CustomerBalance struct {
	Customer string
	Balance  float64
}

func NewFiadoService(store tablestore.Store, logger *log.Logger) *FiadoService {
	return &FiadoService{
		store:  store,
		logger: logger.WithComponent(log.ComponentFiado),
	}
}

// Charge appends a charge entry, increasing the customer's debt.
func (s *FiadoService) Charge(ctx context.Context, e core.CreditEntry) error {
	e.Type = core.CreditCharge
	return s.append(ctx, e)
}

// RegisterPayment appends a payment entry, decreasing the customer's debt.
// Overpayment is allowed and leaves a negative balance (credit in favor).
func (s *FiadoService) RegisterPayment(ctx context.Context, e core.CreditEntry) error {
	e.Type = core.CreditPayment
	return s.append(ctx, e)
}

func (s *FiadoService) append(ctx context.Context, e core.CreditEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	if err := s.store.AppendRows(ctx, schema.TableFiado, [][]string{creditRow(e)}); err != nil {
		return fmt.Errorf("append fiado entry: %w", err)
	}
	tablestore.Invalidate(s.store, schema.TableFiado)
	s.logger.InfoContext(ctx, "Fiado entry recorded",
		log.FieldCustomer, e.Customer,
		"type", e.Type,
		"amount", e.Amount)
	return nil
}

// Balance returns one customer's outstanding debt.
func (s *FiadoService) Balance(ctx context.Context, customer string) (float64, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.Customer == customer {
			return b.Balance, nil
		}
	}
	return 0, nil
}

// Balances sums the whole ledger per customer, sorted by name.
func (s *FiadoService) Balances(ctx context.Context) ([]CustomerBalance, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, e := range entries {
		switch e.Type {
		case core.CreditCharge:
			totals[e.Customer] += e.Amount
		case core.CreditPayment:
			totals[e.Customer] -= e.Amount
		}
	}
	balances := make([]CustomerBalance, 0, len(totals))
	for customer, balance := range totals {
		balances = append(balances, CustomerBalance{Customer: customer, Balance: balance})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Customer < balances[j].Customer
	})
	return balances, nil
}

// Statement returns one customer's entries in ledger order.
func (s *FiadoService) Statement(ctx context.Context, customer string) ([]core.CreditEntry, error) {
	if customer == "" {
		return nil, core.ErrEmptyCustomer
	}
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	var statement []core.CreditEntry
	for _, e := range entries {
		if e.Customer == customer {
			statement = append(statement, e)
		}
	}
	return statement, nil
}

func (s *FiadoService) entries(ctx context.Context) ([]core.CreditEntry, error) {
	t, err := schema.Load(ctx, s.store, schema.TableFiado)
	if err != nil {
		return nil, fmt.Errorf("load fiado ledger: %w", err)
	}
	customerCol, ok := t.Resolve(schema.ColCustomer...)
	if !ok {
		s.logger.Warn("Fiado ledger skipped: customer column unresolved")
		return nil, nil
	}
	typeCol, ok := t.Resolve(schema.ColType...)
	if !ok {
		s.logger.Warn("Fiado ledger skipped: type column unresolved")
		return nil, nil
	}
	amountCol, _ := t.Resolve(schema.ColAmount...)
	dateCol, _ := t.Resolve(schema.ColDate...)
	docCol, _ := t.Resolve(schema.ColDocument...)
	notesCol, _ := t.Resolve(schema.ColNotes...)

	var entries []core.CreditEntry
	for _, row := range t.Rows() {
		customer := schema.Cell(row, customerCol)
		if customer == "" {
			continue
		}
		date, _ := core.ToDate(schema.Cell(row, dateCol))
		entries = append(entries, core.CreditEntry{
			Date:     date,
			Customer: customer,
			Type:     schema.Cell(row, typeCol),
			Amount:   core.ToNumber(schema.Cell(row, amountCol)),
			Document: schema.Cell(row, docCol),
			Notes:    schema.Cell(row, notesCol),
		})
	}
	return entries, nil
}

func creditRow(e core.CreditEntry) []string {
	return []string{
		core.FormatDate(e.Date),
		e.Customer,
		e.Type,
		core.FormatNumber(e.Amount),
		e.Document,
		e.Notes,
	}
}
