package handlers

import (
	"net/http"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/sync"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ObligationsHandler handles the pending debt and subscription endpoints.
type ObligationsHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewObligationsHandler creates a new obligations handler.
func NewObligationsHandler(coord *sync.Coordinator, log zerolog.Logger) *ObligationsHandler {
	return &ObligationsHandler{coord: coord, log: log}
}

type obligationRequest struct {
	PurchaseDate     string                 `json:"purchase_date"`
	CardAccount      string                 `json:"card_account"`
	Category         string                 `json:"category"`
	Description      string                 `json:"description"`
	Notes            string                 `json:"notes,omitempty"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	InstallmentCount int                    `json:"installment_count"`
	ClosingDate      string                 `json:"closing_date"`
	DueDate          string                 `json:"due_date"`
	Type             domain.ObligationType  `json:"type"`
	State            domain.ObligationState `json:"state,omitempty"`
}

func (req obligationRequest) toDomain() (domain.PendingObligation, error) {
	purchase, err := parseDate(req.PurchaseDate)
	if err != nil {
		return domain.PendingObligation{}, err
	}
	closing, err := parseDate(req.ClosingDate)
	if err != nil {
		return domain.PendingObligation{}, err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return domain.PendingObligation{}, err
	}
	return domain.PendingObligation{
		PurchaseDate:     purchase,
		CardAccount:      req.CardAccount,
		Category:         req.Category,
		Description:      req.Description,
		Notes:            req.Notes,
		TotalAmount:      req.TotalAmount,
		InstallmentCount: req.InstallmentCount,
		ClosingDate:      closing,
		DueDate:          due,
		State:            req.State,
		Type:             req.Type,
	}, nil
}

// List handles GET /api/obligations
func (h *ObligationsHandler) List(w http.ResponseWriter, r *http.Request) {
	obls := h.coord.Store().Obligations.All()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"obligations": obls,
		"count":       len(obls),
	})
}

// Create handles POST /api/obligations
func (h *ObligationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req obligationRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	o, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.coord.CreateObligation(r.Context(), o)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/obligations/{id}
func (h *ObligationsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req obligationRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	o, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Keep the stored payment counter; edits change the terms, not the
	// payment history.
	if current, ok := h.coord.Store().Obligations.Get(id); ok {
		o.TotalAmountPaid = current.TotalAmountPaid
		o.Timestamp = current.Timestamp
	}

	if err := h.coord.UpdateObligation(r.Context(), id, o); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /api/obligations/{id}
func (h *ObligationsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.coord.RemoveObligation(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Settle handles POST /api/obligations/{id}/settle
func (h *ObligationsHandler) Settle(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Amount decimal.Decimal       `json:"amount"`
		Kind   domain.SettlementKind `json:"kind"`
	}
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settled, err := h.coord.SettleObligation(r.Context(), id, req.Amount, req.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, settled)
}
