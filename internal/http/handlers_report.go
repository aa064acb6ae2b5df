package http

import (
	"fmt"
	"net/http"
	"time"

	"balcao/internal/core"
	"balcao/internal/export"
	"balcao/internal/services"
)

type closingPayload struct {
	From        string                `json:"from"`
	To          string                `json:"to"`
	SaleCount   int                   `json:"sale_count"`
	Revenue     float64               `json:"revenue"`
	GrossProfit *float64              `json:"gross_profit,omitempty"`
	ByPayment   []paymentTotalPayload `json:"by_payment"`
	TopProducts []productTotalPayload `json:"top_products"`
}

type paymentTotalPayload struct {
	Payment string  `json:"payment"`
	Total   float64 `json:"total"`
}

type productTotalPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	Revenue   float64 `json:"revenue"`
}

func (s *Server) handleCashClosing(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	closing, err := s.report.CloseCashRegister(r.Context(), from, to)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Cash closing failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	payload := closingPayload{
		From:        core.FormatDate(closing.From),
		To:          core.FormatDate(closing.To),
		SaleCount:   closing.SaleCount,
		Revenue:     closing.Revenue,
		ByPayment:   make([]paymentTotalPayload, 0, len(closing.ByPayment)),
		TopProducts: make([]productTotalPayload, 0, len(closing.TopProducts)),
	}
	if closing.ProfitAvailable {
		profit := closing.GrossProfit
		payload.GrossProfit = &profit
	}
	for _, p := range closing.ByPayment {
		payload.ByPayment = append(payload.ByPayment, paymentTotalPayload{Payment: p.Payment, Total: p.Total})
	}
	for _, p := range closing.TopProducts {
		payload.TopProducts = append(payload.TopProducts, productTotalPayload{
			ProductID: p.ProductID,
			Name:      p.Name,
			Qty:       p.Qty,
			Revenue:   p.Revenue,
		})
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleClosingCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	closing, err := s.report.CloseCashRegister(r.Context(), from, to)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Cash closing failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("cash-closing", from, to, "csv"))
	if err := export.ClosingCSV(w, closing); err != nil {
		s.logger.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

func (s *Server) handleSalesCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	sales, err := s.report.SalesDetail(r.Context(), from, to)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Sales detail failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("sales", from, to, "csv"))
	if err := export.SalesCSV(w, sales); err != nil {
		s.logger.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

func (s *Server) handleSalesXLSX(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	var closing *services.CashClosing
	var sales []core.Sale
	closing, err = s.report.CloseCashRegister(r.Context(), from, to)
	if err == nil {
		sales, err = s.report.SalesDetail(r.Context(), from, to)
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "XLSX export failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment("sales", from, to, "xlsx"))
	if err := export.SalesXLSX(w, closing, sales); err != nil {
		s.logger.ErrorContext(r.Context(), "XLSX export failed", "error", err)
	}
}

func attachment(prefix string, from, to time.Time, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s_%s_%s.%s"`,
		prefix, from.Format("20060102"), to.Format("20060102"), ext)
}
