package http

import (
	"errors"
	"net/http"

	"balcao/internal/core"
)

type productPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Supplier     string  `json:"supplier,omitempty"`
	CurrentCost  float64 `json:"current_cost,omitempty"`
	SalePrice    float64 `json:"sale_price,omitempty"`
	MarkupPct    float64 `json:"markup_pct,omitempty"`
	MarginPct    float64 `json:"margin_pct,omitempty"`
	CurrentStock float64 `json:"current_stock,omitempty"`
	MinStock     float64 `json:"min_stock,omitempty"`
	LeadTimeDays int     `json:"lead_time_days,omitempty"`
	Active       bool    `json:"active"`
}

func toProductPayload(p core.Product) productPayload {
	return productPayload{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Unit:         p.Unit,
		Supplier:     p.Supplier,
		CurrentCost:  p.CurrentCost,
		SalePrice:    p.SalePrice,
		MarkupPct:    p.MarkupPct,
		MarginPct:    p.MarginPct,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		LeadTimeDays: p.LeadTimeDays,
		Active:       p.Active,
	}
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Product list failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	payload := make([]productPayload, 0, len(products))
	for _, p := range products {
		payload = append(payload, toProductPayload(p))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p := core.Product{
		ID:           sanitizeInput(req.ID),
		Name:         sanitizeInput(req.Name),
		Category:     sanitizeInput(req.Category),
		Unit:         sanitizeInput(req.Unit),
		Supplier:     sanitizeInput(req.Supplier),
		CurrentCost:  req.CurrentCost,
		SalePrice:    req.SalePrice,
		MarkupPct:    req.MarkupPct,
		MarginPct:    req.MarginPct,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		LeadTimeDays: req.LeadTimeDays,
		Active:       req.Active,
	}
	if err := s.catalog.SaveProduct(r.Context(), p); err != nil {
		if errors.Is(err, core.ErrEmptyProductID) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.ErrorContext(r.Context(), "Product save failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductPayload(p))
}

type supplierPayload struct {
	Name         string `json:"name"`
	TaxID        string `json:"tax_id,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	LeadTimeDays int    `json:"lead_time_days,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.catalog.Suppliers(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Supplier list failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	payload := make([]supplierPayload, 0, len(suppliers))
	for _, sup := range suppliers {
		payload = append(payload, supplierPayload{
			Name:         sup.Name,
			TaxID:        sup.TaxID,
			Contact:      sup.Contact,
			Phone:        sup.Phone,
			Email:        sup.Email,
			LeadTimeDays: sup.LeadTimeDays,
			Notes:        sup.Notes,
		})
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSaveSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	sup := core.Supplier{
		Name:         sanitizeInput(req.Name),
		TaxID:        sanitizeInput(req.TaxID),
		Contact:      sanitizeInput(req.Contact),
		Phone:        sanitizeInput(req.Phone),
		Email:        sanitizeInput(req.Email),
		LeadTimeDays: req.LeadTimeDays,
		Notes:        sanitizeInput(req.Notes),
	}
	if sup.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, errors.New("empty supplier name"))
		return
	}
	if err := s.catalog.SaveSupplier(r.Context(), sup); err != nil {
		s.logger.ErrorContext(r.Context(), "Supplier save failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	values, err := s.catalog.ConfigValues(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Config read failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, values)
}
