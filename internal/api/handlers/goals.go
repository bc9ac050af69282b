package handlers

import (
	"net/http"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/sync"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// GoalsHandler handles the savings goal endpoints.
type GoalsHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(coord *sync.Coordinator, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{coord: coord, log: log}
}

type goalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

// List handles GET /api/goals
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	goals := h.coord.Store().Goals.All()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// Create handles POST /api/goals
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.coord.CreateGoal(r.Context(), domain.Goal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		SavedAmount:  decimal.Zero,
		State:        domain.GoalActive,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/goals/{id}
func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.coord.UpdateGoal(r.Context(), id, domain.Goal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /api/goals/{id}.
//
// A goal that still holds funds needs a destination: with ?account=<id>
// the funds are released there first and the goal deleted in the same
// command; without it the delete of a non-empty goal is rejected.
func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	account := r.URL.Query().Get("account")

	var err error
	if account != "" {
		err = h.coord.DeleteGoalReleasingTo(r.Context(), id, account)
	} else {
		err = h.coord.DeleteGoal(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type envelopeRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Account string          `json:"account"`
}

// Contribute handles POST /api/goals/{id}/contribute
func (h *GoalsHandler) Contribute(w http.ResponseWriter, r *http.Request, id string) {
	var req envelopeRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Account == "" {
		req.Account = domain.WalletID
	}

	tx, err := h.coord.Contribute(r.Context(), id, req.Amount, req.Account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Release handles POST /api/goals/{id}/release
func (h *GoalsHandler) Release(w http.ResponseWriter, r *http.Request, id string) {
	var req envelopeRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Account == "" {
		req.Account = domain.WalletID
	}

	tx, err := h.coord.Release(r.Context(), id, req.Amount, req.Account)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}
