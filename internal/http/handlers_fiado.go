package http

import (
	"errors"
	"net/http"

	"balcao/internal/core"
)

type balancePayload struct {
	Customer string  `json:"customer"`
	Balance  float64 `json:"balance"`
}

func (s *Server) handleFiadoBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.fiado.Balances(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Fiado balances failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	payload := make([]balancePayload, 0, len(balances))
	for _, b := range balances {
		payload = append(payload, balancePayload{Customer: b.Customer, Balance: b.Balance})
	}
	respondJSON(w, http.StatusOK, payload)
}

type creditEntryPayload struct {
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Document string  `json:"document,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

func (s *Server) handleFiadoStatement(w http.ResponseWriter, r *http.Request) {
	customer := r.PathValue("customer")
	entries, err := s.fiado.Statement(r.Context(), customer)
	if err != nil {
		if errors.Is(err, core.ErrEmptyCustomer) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.ErrorContext(r.Context(), "Fiado statement failed", "error", err, "customer", customer)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	balance, err := s.fiado.Balance(r.Context(), customer)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	payload := struct {
		Customer string               `json:"customer"`
		Balance  float64              `json:"balance"`
		Entries  []creditEntryPayload `json:"entries"`
	}{Customer: customer, Balance: balance, Entries: make([]creditEntryPayload, 0, len(entries))}
	for _, e := range entries {
		payload.Entries = append(payload.Entries, creditEntryPayload{
			Date:     core.FormatDate(e.Date),
			Type:     e.Type,
			Amount:   e.Amount,
			Document: e.Document,
			Notes:    e.Notes,
		})
	}
	respondJSON(w, http.StatusOK, payload)
}

type fiadoPaymentPayload struct {
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

func (s *Server) handleFiadoPayment(w http.ResponseWriter, r *http.Request) {
	var req fiadoPaymentPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	entry := core.CreditEntry{
		Date:     date,
		Customer: sanitizeInput(req.Customer),
		Amount:   req.Amount,
		Notes:    sanitizeInput(req.Notes),
	}
	if err := s.fiado.RegisterPayment(r.Context(), entry); err != nil {
		if errors.Is(err, core.ErrEmptyCustomer) || errors.Is(err, core.ErrInvalidAmount) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.ErrorContext(r.Context(), "Fiado payment failed", "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}
