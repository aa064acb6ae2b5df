package http

import (
	"errors"
	"net/http"
	"time"

	"balcao/internal/core"
)

type stockLevelPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Current   float64 `json:"current"`
	MinStock  float64 `json:"min_stock"`
	Low       bool    `json:"low"`
}

func (s *Server) handleStockLevels(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Product list failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	levels, err := s.stock.Levels(r.Context(), products)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Stock snapshot failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	lowOnly := r.URL.Query().Get("low") == "true"
	payload := make([]stockLevelPayload, 0, len(levels))
	for _, l := range levels {
		if lowOnly && !l.Low {
			continue
		}
		payload = append(payload, stockLevelPayload{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Current:   l.Current,
			MinStock:  l.Product.MinStock,
			Low:       l.Low,
		})
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleStockOne(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.stock.ComputeStock(r.Context(), id)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Stock compute failed", "error", err, "product_id", id)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"product_id": id,
		"current":    current,
	})
}

type purchasePayload struct {
	Date       string  `json:"date,omitempty"`
	DocRef     string  `json:"doc_ref,omitempty"`
	Supplier   string  `json:"supplier,omitempty"`
	ProductID  string  `json:"product_id"`
	Qty        float64 `json:"qty"`
	UnitCost   float64 `json:"unit_cost"`
	Freight    float64 `json:"freight,omitempty"`
	OtherCosts float64 `json:"other_costs,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

func (s *Server) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchasePayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	p := core.Purchase{
		Date:       date,
		DocRef:     sanitizeInput(req.DocRef),
		Supplier:   sanitizeInput(req.Supplier),
		ProductID:  sanitizeInput(req.ProductID),
		Qty:        req.Qty,
		UnitCost:   req.UnitCost,
		Freight:    req.Freight,
		OtherCosts: req.OtherCosts,
		Notes:      sanitizeInput(req.Notes),
	}
	if err := s.stock.RecordPurchase(r.Context(), p); err != nil {
		if errors.Is(err, core.ErrEmptyProductID) || errors.Is(err, core.ErrInvalidQty) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.ErrorContext(r.Context(), "Purchase record failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

type adjustmentPayload struct {
	Date        string  `json:"date,omitempty"`
	ProductID   string  `json:"product_id"`
	Qty         float64 `json:"qty"`
	Reason      string  `json:"reason"`
	Responsible string  `json:"responsible,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

func (s *Server) handleRegisterAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	adj := core.Adjustment{
		Date:        date,
		ProductID:   sanitizeInput(req.ProductID),
		Qty:         req.Qty,
		Reason:      sanitizeInput(req.Reason),
		Responsible: sanitizeInput(req.Responsible),
		Notes:       sanitizeInput(req.Notes),
	}
	if err := s.stock.RegisterAdjustment(r.Context(), adj); err != nil {
		if errors.Is(err, core.ErrEmptyProductID) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.ErrorContext(r.Context(), "Adjustment register failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

// optionalDate parses a dd/mm/yyyy request field, empty meaning "now".
func optionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, ok := core.ToDate(raw)
	if !ok {
		return time.Time{}, errors.New("invalid date: expected dd/mm/yyyy")
	}
	return parsed, nil
}
