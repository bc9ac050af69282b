package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/projector"
	"github.com/galan4520/finanzas/internal/sync"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SummaryHandler serves the read side: every balance is recomputed from
// the ledger and the obligation set on each request.
type SummaryHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(coord *sync.Coordinator, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{coord: coord, log: log}
}

// accountView is one account with its projected figures.
type accountView struct {
	Account         domain.Account   `json:"account"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
	CreditAvailable *decimal.Decimal `json:"credit_available,omitempty"`
	RemainingDebt   *decimal.Decimal `json:"remaining_debt,omitempty"`
}

// Summary handles GET /api/summary. Optional ?year= and ?month= select
// the month of the flow figures; they default to the current month.
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	store := h.coord.Store()
	txs := store.Ledger.All()
	obls := store.Obligations.All()
	accounts := store.Accounts()

	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))

	views := make([]accountView, 0, len(accounts))
	for _, acct := range accounts {
		view := accountView{Account: acct}
		switch acct.Type {
		case domain.AccountWallet:
			b := projector.WalletBalance(txs)
			view.Balance = &b
		case domain.AccountDebit:
			b := projector.DebitAccountBalance(txs, acct)
			view.Balance = &b
		case domain.AccountCredit:
			avail := projector.CreditAvailable(obls, acct)
			view.CreditAvailable = &avail
			debt := projector.RemainingDebtOn(obls, acct.ID)
			view.RemainingDebt = &debt
		}
		views = append(views, view)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total_balance":      projector.TotalBalance(txs, accounts),
		"remaining_debt":     projector.TotalRemainingDebt(obls),
		"credit_utilization": projector.CreditUtilization(obls, accounts),
		"accounts":           views,
		"month_flow":         projector.MonthlyFlow(txs, year, month),
	})
}

// Snapshot handles GET /api/snapshot: the complete local state.
func (h *SummaryHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.coord.Store().Snapshot())
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
