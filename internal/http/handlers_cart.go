package http

import (
	"errors"
	"net/http"

	"balcao/internal/core"
	"balcao/internal/services"
)

type cartLinePayload struct {
	ProductID string  `json:"product_id"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type cartViewPayload struct {
	Lines []cartLinePayload `json:"lines"`
	Total float64           `json:"total"`
}

func (s *Server) cartView() cartViewPayload {
	lines := s.cart.Lines()
	view := cartViewPayload{Lines: make([]cartLinePayload, 0, len(lines))}
	for _, l := range lines {
		view.Lines = append(view.Lines, cartLinePayload{
			ProductID: l.ProductID,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
		view.Total += l.Subtotal()
	}
	return view
}

func (s *Server) handleCartView(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.cartView())
}

type addLinePayload struct {
	ProductID string  `json:"product_id"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
}

func (s *Server) handleCartAddLine(w http.ResponseWriter, r *http.Request) {
	var req addLinePayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	line := core.CartLine{
		ProductID: sanitizeInput(req.ProductID),
		Qty:       req.Qty,
		UnitPrice: req.UnitPrice,
	}
	// No explicit price: look it up in the catalog.
	if line.UnitPrice == 0 && line.ProductID != "" {
		product, found, err := s.catalog.ProductByID(r.Context(), line.ProductID)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Product lookup failed", "error", err, "product_id", line.ProductID)
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		if !found {
			respondError(w, http.StatusNotFound, errors.New("product not found: "+line.ProductID))
			return
		}
		line.UnitPrice = product.SalePrice
	}

	if err := s.cart.AddLine(line); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	respondJSON(w, http.StatusOK, s.cartView())
}

type updateQtyPayload struct {
	Qty float64 `json:"qty"`
}

func (s *Server) handleCartUpdateQty(w http.ResponseWriter, r *http.Request) {
	var req updateQtyPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cart.UpdateQty(r.PathValue("id"), req.Qty); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrLineNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, err)
		return
	}
	respondJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) handleCartRemoveLine(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.RemoveLine(r.PathValue("id")); err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, s.cartView())
}

func (s *Server) handleCartClear(w http.ResponseWriter, _ *http.Request) {
	s.cart.Clear()
	respondJSON(w, http.StatusOK, s.cartView())
}

type checkoutPayload struct {
	Payment  string  `json:"payment"`
	Customer string  `json:"customer,omitempty"`
	Channel  string  `json:"channel,omitempty"`
	Discount float64 `json:"discount,omitempty"`
}

type checkoutResponse struct {
	Document string  `json:"document"`
	Total    float64 `json:"total"`
	Lines    int     `json:"lines"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.checkout.Confirm(r.Context(), s.cart, services.CheckoutRequest{
		Payment:  sanitizeInput(req.Payment),
		Customer: sanitizeInput(req.Customer),
		Channel:  sanitizeInput(req.Channel),
		Discount: req.Discount,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart),
			errors.Is(err, services.ErrFiadoNeedsClient),
			errors.Is(err, core.ErrInvalidQty):
			respondError(w, http.StatusUnprocessableEntity, err)
		default:
			s.logger.ErrorContext(r.Context(), "Checkout failed", "error", err)
			respondError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponse{
		Document: result.Document,
		Total:    result.Total,
		Lines:    result.Lines,
	})
}
