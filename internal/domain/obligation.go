package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ObligationType distinguishes amortized card debt from recurring
// subscriptions.
type ObligationType string

const (
	// ObligationDebt is a card purchase amortized over a fixed number of
	// equal installments.
	ObligationDebt ObligationType = "debt"
	// ObligationSubscription is a recurring charge. Settling it rolls the
	// due and closing dates forward one month instead of amortizing.
	ObligationSubscription ObligationType = "subscription"
)

// ObligationState is the settlement state of an obligation.
type ObligationState string

const (
	ObligationPending ObligationState = "pending"
	ObligationPaid    ObligationState = "paid"
)

// SettlementKind selects how a payment is applied to an obligation.
type SettlementKind string

const (
	// SettleInstallment pays exactly one installment.
	SettleInstallment SettlementKind = "installment"
	// SettleFull pays off the whole remaining debt.
	SettleFull SettlementKind = "full"
	// SettlePartial pays an arbitrary amount against the debt.
	SettlePartial SettlementKind = "partial"
)

// PendingObligation is an installment debt or a subscription riding on a
// credit card.
//
// TotalAmountPaid is the single authoritative payment counter; the number
// of installments paid is always derived from it, so the two can never
// drift apart.
type PendingObligation struct {
	ID               string          `json:"id"`
	PurchaseDate     time.Time       `json:"purchase_date"`
	CardAccount      string          `json:"card_account"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	Notes            string          `json:"notes,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	TotalAmountPaid  decimal.Decimal `json:"total_amount_paid"`
	ClosingDate      time.Time       `json:"closing_date"`
	DueDate          time.Time       `json:"due_date"`
	State            ObligationState `json:"state"`
	Type             ObligationType  `json:"type"`
	Timestamp        int64           `json:"timestamp"`
}

// InstallmentValue is the amount of one installment: total amount spread
// evenly over the installment count.
func (o PendingObligation) InstallmentValue() decimal.Decimal {
	if o.InstallmentCount <= 0 {
		return o.TotalAmount
	}
	return o.TotalAmount.Div(decimal.NewFromInt(int64(o.InstallmentCount)))
}

// InstallmentsPaid is the derived count of fully covered installments:
// floor(total paid / installment value), clamped to the installment count.
// Partial payments below one installment's value accumulate in
// TotalAmountPaid and surface here once they cover a full installment.
func (o PendingObligation) InstallmentsPaid() int {
	value := o.InstallmentValue()
	if value.Cmp(decimal.Zero) <= 0 {
		return 0
	}
	n := int(o.TotalAmountPaid.Div(value).Floor().IntPart())
	if n > o.InstallmentCount {
		return o.InstallmentCount
	}
	return n
}

// RemainingDebt is the amount still owed, floored at zero.
func (o PendingObligation) RemainingDebt() decimal.Decimal {
	remaining := o.TotalAmount.Sub(o.TotalAmountPaid)
	if remaining.Cmp(decimal.Zero) < 0 {
		return decimal.Zero
	}
	return remaining
}

// Settled reports whether the debt is fully amortized. Subscriptions never
// settle permanently; they roll forward instead.
func (o PendingObligation) Settled() bool {
	if o.Type == ObligationSubscription {
		return false
	}
	return o.TotalAmountPaid.Cmp(o.TotalAmount) >= 0
}

// Validate checks the invariants a new or updated obligation must satisfy.
func (o PendingObligation) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("obligation has no id: %w", ErrInvalidEntity)
	}
	if o.TotalAmount.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("obligation total %s: %w", o.TotalAmount, ErrInvalidAmount)
	}
	if o.CardAccount == "" {
		return fmt.Errorf("obligation has no card account: %w", ErrInvalidEntity)
	}
	if o.Type == ObligationDebt && o.InstallmentCount <= 0 {
		return fmt.Errorf("debt obligation needs at least one installment: %w", ErrInvalidEntity)
	}
	if o.TotalAmountPaid.Cmp(o.TotalAmount) > 0 {
		return fmt.Errorf("obligation paid %s exceeds total %s: %w", o.TotalAmountPaid, o.TotalAmount, ErrInvalidEntity)
	}
	return nil
}
