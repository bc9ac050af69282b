package projector

import (
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthFlow is the income/expense picture of one calendar month.
type MonthFlow struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// MonthlyFlow folds the ledger into one month's totals. Goal movements are
// internal transfers, not income or spending, so only plain income and
// expense entries count.
func MonthlyFlow(txs []domain.Transaction, year int, month int) MonthFlow {
	flow := MonthFlow{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		if tx.Date.Year() != year || int(tx.Date.Month()) != month {
			continue
		}
		switch tx.Kind {
		case domain.KindIncome:
			flow.Income = flow.Income.Add(tx.Amount)
		case domain.KindExpense:
			flow.Expense = flow.Expense.Add(tx.Amount)
		}
	}
	flow.Net = flow.Income.Sub(flow.Expense)
	return flow
}
