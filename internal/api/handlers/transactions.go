package handlers

import (
	"net/http"
	"strconv"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/sync"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionsHandler handles the ledger endpoints.
type TransactionsHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(coord *sync.Coordinator, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{coord: coord, log: log}
}

// transactionRequest is the write shape the UI sends.
type transactionRequest struct {
	Kind        domain.TransactionKind `json:"kind"`
	Amount      decimal.Decimal        `json:"amount"`
	Account     string                 `json:"account"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
	GoalID      string                 `json:"goal_id,omitempty"`
}

func (req transactionRequest) toDomain() (domain.Transaction, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.Transaction{}, err
	}
	account := req.Account
	if account == "" {
		account = domain.WalletID
	}
	return domain.Transaction{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Account:     account,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		GoalID:      req.GoalID,
	}, nil
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txs := h.coord.Store().Ledger.All()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.coord.RecordTransaction(r.Context(), tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/transactions/{timestamp}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, stamp string) {
	timestamp, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid timestamp")
		return
	}

	var req transactionRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := req.toDomain()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coord.EditTransaction(r.Context(), timestamp, tx); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /api/transactions/{timestamp}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, stamp string) {
	timestamp, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid timestamp")
		return
	}

	if err := h.coord.DeleteTransaction(r.Context(), timestamp); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
