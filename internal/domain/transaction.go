package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	// KindIncome is money entering an account.
	KindIncome TransactionKind = "income"
	// KindExpense is money leaving an account.
	KindExpense TransactionKind = "expense"
	// KindGoalContribution moves money from an account into a goal envelope.
	// It debits the account exactly like an expense.
	KindGoalContribution TransactionKind = "goal_contribution"
	// KindGoalRelease moves money out of a goal envelope back into an account.
	// It credits the account exactly like an income.
	KindGoalRelease TransactionKind = "goal_release"
)

// Valid reports whether k is one of the four enumerated kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindGoalContribution, KindGoalRelease:
		return true
	}
	return false
}

// Credits reports whether the kind increases the balance of its account.
func (k TransactionKind) Credits() bool {
	return k == KindIncome || k == KindGoalRelease
}

// Transaction is one immutable fact in the ledger: money moved on a date,
// against an account, for a reason. The Timestamp (Unix milliseconds at
// creation) doubles as the transaction's identity; edits are modeled as
// replace-by-timestamp and deletes as remove-by-timestamp, never as
// in-place mutation.
type Transaction struct {
	Timestamp   int64           `json:"timestamp"`
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Account     string          `json:"account"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	// GoalID tags goal contributions and releases with the envelope they
	// belong to. Empty for income and expense entries.
	GoalID string `json:"goal_id,omitempty"`
}

// Validate checks the invariants every transaction must satisfy before it
// may enter the ledger.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("transaction kind %q: %w", t.Kind, ErrInvalidKind)
	}
	if t.Amount.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("transaction amount %s: %w", t.Amount, ErrInvalidAmount)
	}
	if t.Account == "" {
		return fmt.Errorf("transaction has no account: %w", ErrInvalidEntity)
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("transaction has no timestamp: %w", ErrInvalidEntity)
	}
	switch t.Kind {
	case KindGoalContribution, KindGoalRelease:
		if t.GoalID == "" {
			return fmt.Errorf("%s transaction has no goal id: %w", t.Kind, ErrInvalidEntity)
		}
	}
	return nil
}
