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

// topProductLimit caps the best-seller list in the cash closing.
const topProductLimit = 15

// PaymentTotal is the revenue collected through one payment method.
type PaymentTotal struct {
	Payment string
	Total   float64
}

// ProductTotal is one product's aggregated sales in a period.
type ProductTotal struct {
	ProductID string
	Name      string
	Qty       float64
	Revenue   float64
}

// CashClosing aggregates a period of sales. GrossProfit is only
// meaningful when ProfitAvailable is set: without a resolvable cost for
// every sold product the margin cannot be trusted, so it is withheld
// instead of silently wrong.
type CashClosing struct {
	From            time.Time
	To              time.Time
	SaleCount       int
	Revenue         float64
	GrossProfit     float64
	ProfitAvailable bool
	ByPayment       []PaymentTotal
	TopProducts     []ProductTotal
}

// ReportService builds the cash-closing summary and the sales detail
// used by the CSV and XLSX exports.
type ReportService struct {
	store   tablestore.Store
	catalog *CatalogService
	logger  *log.Logger
}

func NewReportService(store tablestore.Store, catalog *CatalogService, logger *log.Logger) *ReportService {
	return &ReportService{
		store:   store,
		catalog: catalog,
		logger:  logger.WithComponent(log.ComponentReport),
	}
}

// CloseCashRegister summarizes all sales with from <= date <= to. Both
// boundaries are inclusive; rows with unparseable dates are excluded.
func (s *ReportService) CloseCashRegister(ctx context.Context, from, to time.Time) (*CashClosing, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("period end %s before start %s", core.FormatDate(to), core.FormatDate(from))
	}

	sales, priceResolved, err := s.salesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	costs := make(map[string]float64, len(products))
	names := make(map[string]string, len(products))
	prices := make(map[string]float64, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
		prices[p.ID] = p.SalePrice
		if p.CurrentCost > 0 {
			costs[p.ID] = p.CurrentCost
		}
	}

	closing := &CashClosing{From: from, To: to, ProfitAvailable: true}
	byPayment := make(map[string]float64)
	byProduct := make(map[string]*ProductTotal)
	documents := make(map[string]bool)

	for i := range sales {
		sale := &sales[i]
		if !priceResolved {
			// Sheet predates the price column: fall back to the
			// current catalog price. A resolvable column with an
			// explicit 0 stays 0 (giveaways, comped items).
			sale.UnitPrice = prices[sale.ProductID]
		}
		lineRevenue := sale.Qty * sale.UnitPrice

		closing.Revenue += lineRevenue
		byPayment[sale.Payment] += lineRevenue
		if sale.Document != "" {
			documents[sale.Document] = true
		} else {
			closing.SaleCount++
		}

		cost, ok := costs[sale.ProductID]
		if ok {
			closing.GrossProfit += lineRevenue - sale.Qty*cost
		} else {
			closing.ProfitAvailable = false
		}

		pt, ok := byProduct[sale.ProductID]
		if !ok {
			pt = &ProductTotal{ProductID: sale.ProductID, Name: names[sale.ProductID]}
			byProduct[sale.ProductID] = pt
		}
		pt.Qty += sale.Qty
		pt.Revenue += lineRevenue
	}
	closing.SaleCount += len(documents)

	if !closing.ProfitAvailable {
		closing.GrossProfit = 0
	}

	closing.ByPayment = make([]PaymentTotal, 0, len(byPayment))
	for payment, total := range byPayment {
		closing.ByPayment = append(closing.ByPayment, PaymentTotal{Payment: payment, Total: total})
	}
	sort.Slice(closing.ByPayment, func(i, j int) bool {
		return closing.ByPayment[i].Payment < closing.ByPayment[j].Payment
	})

	closing.TopProducts = make([]ProductTotal, 0, len(byProduct))
	for _, pt := range byProduct {
		closing.TopProducts = append(closing.TopProducts, *pt)
	}
	sort.Slice(closing.TopProducts, func(i, j int) bool {
		if closing.TopProducts[i].Qty != closing.TopProducts[j].Qty {
			return closing.TopProducts[i].Qty > closing.TopProducts[j].Qty
		}
		return closing.TopProducts[i].ProductID < closing.TopProducts[j].ProductID
	})
	if len(closing.TopProducts) > topProductLimit {
		closing.TopProducts = closing.TopProducts[:topProductLimit]
	}

	s.logger.InfoContext(ctx, "Cash register closed",
		"from", core.FormatDate(from),
		"to", core.FormatDate(to),
		"sales", closing.SaleCount,
		log.FieldTotal, closing.Revenue)

	return closing, nil
}

// SalesDetail returns the individual sale lines in a period, oldest
// first, for export.
func (s *ReportService) SalesDetail(ctx context.Context, from, to time.Time) ([]core.Sale, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("period end %s before start %s", core.FormatDate(to), core.FormatDate(from))
	}
	sales, _, err := s.salesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date.Before(sales[j].Date)
	})
	return sales, nil
}

// salesBetween parses and filters the Sales table. The second result
// reports whether a unit price column was resolvable.
func (s *ReportService) salesBetween(ctx context.Context, from, to time.Time) ([]core.Sale, bool, error) {
	t, err := schema.Load(ctx, s.store, schema.TableSales)
	if err != nil {
		return nil, false, fmt.Errorf("load sales: %w", err)
	}

	dateCol, ok := t.Resolve(schema.ColDate...)
	if !ok {
		s.logger.Warn("Sales table has no resolvable date column")
		return nil, false, nil
	}
	idCol, ok := t.Resolve(schema.ColProductID...)
	if !ok {
		s.logger.Warn("Sales table has no resolvable product ID column")
		return nil, false, nil
	}
	qtyCol, _ := t.Resolve(schema.ColQty...)
	priceCol, priceResolved := t.Resolve(schema.ColUnitPrice...)
	docCol, _ := t.Resolve(schema.ColDocument...)
	channelCol, _ := t.Resolve(schema.ColChannel...)
	paymentCol, _ := t.Resolve(schema.ColPayment...)
	feeCol, _ := t.Resolve("Fee%", "Taxa")
	discountCol, _ := t.Resolve("Discount", "Desconto")
	notesCol, _ := t.Resolve("CustomerNotes", "Cliente", "Obs")

	fromDay := truncateToDay(from)
	toDay := truncateToDay(to)

	var sales []core.Sale
	for _, row := range t.Rows() {
		date, ok := core.ToDate(schema.Cell(row, dateCol))
		if !ok {
			continue
		}
		day := truncateToDay(date)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		id := schema.Cell(row, idCol)
		if id == "" {
			continue
		}
		sales = append(sales, core.Sale{
			Date:          date,
			Document:      schema.Cell(row, docCol),
			ProductID:     id,
			Qty:           core.ToNumber(schema.Cell(row, qtyCol)),
			UnitPrice:     core.ToNumber(schema.Cell(row, priceCol)),
			Channel:       schema.Cell(row, channelCol),
			Payment:       schema.Cell(row, paymentCol),
			FeePct:        core.ToNumber(schema.Cell(row, feeCol)),
			Discount:      core.ToNumber(schema.Cell(row, discountCol)),
			CustomerNotes: schema.Cell(row, notesCol),
		})
	}
	return sales, priceResolved, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
