// Package obligations tracks credit-card debts and recurring subscriptions
// with their amortization state.
package obligations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/shopspring/decimal"
)

// Tracker holds the pending obligation set, keyed by id. It is consumed
// together with the ledger but independent of it: obligations never create
// ledger entries by themselves.
type Tracker struct {
	mu          sync.Mutex
	obligations map[string]domain.PendingObligation
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{obligations: make(map[string]domain.PendingObligation)}
}

// Create registers a new obligation.
func (t *Tracker) Create(o domain.PendingObligation) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.State == "" {
		o.State = domain.ObligationPending
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.obligations[o.ID]; exists {
		return fmt.Errorf("create obligation %s: already exists: %w", o.ID, domain.ErrInvalidEntity)
	}
	t.obligations[o.ID] = o
	return nil
}

// Update replaces the obligation identified by id.
func (t *Tracker) Update(id string, o domain.PendingObligation) error {
	o.ID = id
	if err := o.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.obligations[id]; !exists {
		return fmt.Errorf("update obligation %s: %w", id, domain.ErrNotFound)
	}
	t.obligations[id] = o
	return nil
}

// Remove deletes the obligation identified by id.
func (t *Tracker) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.obligations[id]; !exists {
		return fmt.Errorf("remove obligation %s: %w", id, domain.ErrNotFound)
	}
	delete(t.obligations, id)
	return nil
}

// Settle applies a payment to the obligation identified by id and returns
// the obligation's state after the payment.
//
// Debts amortize against TotalAmountPaid, the single payment counter:
// an Installment payment adds exactly one installment's value, Full pays
// the whole remaining debt, and Partial adds the payment amount as given
// (payments below one installment's value accumulate until they cover
// one). The debt becomes Paid when the counter reaches the total.
//
// Subscriptions ignore amortization entirely: settling one rolls the due
// and closing dates forward a month and leaves it Pending for the next
// cycle.
func (t *Tracker) Settle(id string, payment decimal.Decimal, kind domain.SettlementKind) (domain.PendingObligation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, exists := t.obligations[id]
	if !exists {
		return domain.PendingObligation{}, fmt.Errorf("settle obligation %s: %w", id, domain.ErrNotFound)
	}

	// Only partial settlements carry an amount, but a negative one is
	// garbage input for every kind.
	if payment.Cmp(decimal.Zero) < 0 {
		return domain.PendingObligation{}, fmt.Errorf("settle obligation %s: payment %s: %w", id, payment, domain.ErrInvalidAmount)
	}

	if o.Type == domain.ObligationSubscription {
		o.DueDate = o.DueDate.AddDate(0, 1, 0)
		o.ClosingDate = o.ClosingDate.AddDate(0, 1, 0)
		o.State = domain.ObligationPending
		t.obligations[id] = o
		return o, nil
	}

	switch kind {
	case domain.SettleInstallment:
		o.TotalAmountPaid = o.TotalAmountPaid.Add(o.InstallmentValue())
	case domain.SettleFull:
		o.TotalAmountPaid = o.TotalAmount
	case domain.SettlePartial:
		if payment.Cmp(decimal.Zero) <= 0 {
			return domain.PendingObligation{}, fmt.Errorf("settle obligation %s: payment %s: %w", id, payment, domain.ErrInvalidAmount)
		}
		o.TotalAmountPaid = o.TotalAmountPaid.Add(payment)
	default:
		return domain.PendingObligation{}, fmt.Errorf("settle obligation %s: unknown settlement kind %q: %w", id, kind, domain.ErrInvalidEntity)
	}

	// Overpayment is capped at the total so the paid counter never exceeds it.
	if o.TotalAmountPaid.Cmp(o.TotalAmount) > 0 {
		o.TotalAmountPaid = o.TotalAmount
	}
	if o.Settled() {
		o.State = domain.ObligationPaid
	}
	t.obligations[id] = o
	return o, nil
}

// Get returns the obligation identified by id.
func (t *Tracker) Get(id string) (domain.PendingObligation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, exists := t.obligations[id]
	return o, exists
}

// All returns a copy of the obligation set ordered by creation timestamp.
func (t *Tracker) All() []domain.PendingObligation {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.PendingObligation, 0, len(t.obligations))
	for _, o := range t.obligations {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Reset replaces the whole obligation set. Used by the resync path.
func (t *Tracker) Reset(list []domain.PendingObligation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.obligations = make(map[string]domain.PendingObligation, len(list))
	for _, o := range list {
		t.obligations[o.ID] = o
	}
}
