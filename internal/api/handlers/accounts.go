package handlers

import (
	"net/http"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/sync"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountsHandler handles the card catalog endpoints.
type AccountsHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(coord *sync.Coordinator, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{coord: coord, log: log}
}

type accountRequest struct {
	ID            string             `json:"id,omitempty"`
	Name          string             `json:"name"`
	Bank          string             `json:"bank,omitempty"`
	Type          domain.AccountType `json:"type"`
	OpeningAmount decimal.Decimal    `json:"opening_amount"`
	Limit         decimal.Decimal    `json:"limit"`
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts := h.coord.Store().Accounts()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acct := domain.Account{
		ID:            req.ID,
		Name:          req.Name,
		Bank:          req.Bank,
		Type:          req.Type,
		OpeningAmount: req.OpeningAmount,
		Limit:         req.Limit,
	}
	if acct.ID == "" {
		acct.ID = req.Name
	}

	if err := h.coord.UpsertCard(r.Context(), acct); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, acct)
}

// Update handles PUT /api/accounts/{id}
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req accountRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acct := domain.Account{
		ID:            id,
		Name:          req.Name,
		Bank:          req.Bank,
		Type:          req.Type,
		OpeningAmount: req.OpeningAmount,
		Limit:         req.Limit,
	}
	if err := h.coord.UpsertCard(r.Context(), acct); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, acct)
}

// Delete handles DELETE /api/accounts/{id}
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.coord.RemoveCard(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
