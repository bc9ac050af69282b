// Package goals manages savings-goal envelopes. An envelope's balance is
// not stored directly: it is realized as tagged contribution and release
// entries in the shared ledger, with a redundant saved-amount copy kept on
// the goal for display. Every mutation here keeps the two in step.
package goals

import (
	"fmt"
	"sort"
	"sync"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/projector"
	"github.com/shopspring/decimal"
)

// LedgerLog is the slice of the ledger the manager needs: appending the
// entries it synthesizes and reading the log for balance checks.
type LedgerLog interface {
	Append(tx domain.Transaction) error
	All() []domain.Transaction
}

// Manager is the goal envelope manager.
type Manager struct {
	mu       sync.Mutex
	goals    map[string]domain.Goal
	log      LedgerLog
	accounts func() []domain.Account
	stamp    func() int64
}

// New creates a manager over the given ledger. accounts supplies the
// current account catalog for free-balance checks; stamp supplies unique
// monotonic timestamps for the entries the manager synthesizes.
func New(log LedgerLog, accounts func() []domain.Account, stamp func() int64) *Manager {
	return &Manager{
		goals:    make(map[string]domain.Goal),
		log:      log,
		accounts: accounts,
		stamp:    stamp,
	}
}

// Create registers a new, empty goal.
func (m *Manager) Create(g domain.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.State == "" {
		g.State = domain.GoalActive
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.goals[g.ID]; exists {
		return fmt.Errorf("create goal %s: already exists: %w", g.ID, domain.ErrInvalidEntity)
	}
	m.goals[g.ID] = g
	return nil
}

// Update replaces the goal identified by id. The saved amount is carried
// over from the stored goal: it derives from ledger entries, not from
// edits, so an update may change name and target but never the balance.
func (m *Manager) Update(id string, g domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.goals[id]
	if !exists {
		return fmt.Errorf("update goal %s: %w", id, domain.ErrNotFound)
	}
	g.ID = id
	g.SavedAmount = current.SavedAmount
	if err := g.Validate(); err != nil {
		return err
	}
	g.State = stateFor(g)
	m.goals[id] = g
	return nil
}

// Delete removes an empty goal. A goal that still holds funds must go
// through ReleaseAndDelete so the money lands back in an account instead
// of vanishing.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, exists := m.goals[id]
	if !exists {
		return fmt.Errorf("delete goal %s: %w", id, domain.ErrNotFound)
	}
	if g.SavedAmount.Cmp(decimal.Zero) > 0 {
		return fmt.Errorf("delete goal %s with %s saved: %w", id, g.SavedAmount, domain.ErrGoalNotEmpty)
	}
	delete(m.goals, id)
	return nil
}

// Contribute moves amount from an account into the goal's envelope. It
// validates the amount against the account's free balance, appends a
// tagged GoalContribution entry debiting the account, and raises the
// goal's saved amount in the same step. Reaching the target completes the
// goal.
func (m *Manager) Contribute(goalID string, amount decimal.Decimal, accountID string) (domain.Transaction, domain.Goal, error) {
	// The catalog lives behind the store's lock; it must be read before
	// the goal lock is taken, never under it.
	accounts := m.accounts()

	m.mu.Lock()
	defer m.mu.Unlock()

	g, exists := m.goals[goalID]
	if !exists {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("contribute to goal %s: %w", goalID, domain.ErrNotFound)
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("contribute %s to goal %s: %w", amount, goalID, domain.ErrInvalidAmount)
	}

	free, err := projector.FreeBalance(m.log.All(), accounts, accountID)
	if err != nil {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("contribute to goal %s: %w", goalID, err)
	}
	if amount.Cmp(free) > 0 {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("contribute %s from %s (free %s): %w", amount, accountID, free, domain.ErrInsufficientFunds)
	}

	tx := m.envelopeEntry(domain.KindGoalContribution, g, amount, accountID)
	if err := m.log.Append(tx); err != nil {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("contribute to goal %s: %w", goalID, err)
	}

	g.SavedAmount = g.SavedAmount.Add(amount)
	g.State = stateFor(g)
	m.goals[goalID] = g
	return tx, g, nil
}

// Release breaks the envelope: it moves amount out of the goal back into
// an account, appending a tagged GoalRelease entry crediting the account
// and lowering the saved amount (floored at zero). Any release reopens the
// goal regardless of what remains.
func (m *Manager) Release(goalID string, amount decimal.Decimal, accountID string) (domain.Transaction, domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(goalID, amount, accountID)
}

func (m *Manager) releaseLocked(goalID string, amount decimal.Decimal, accountID string) (domain.Transaction, domain.Goal, error) {
	g, exists := m.goals[goalID]
	if !exists {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("release from goal %s: %w", goalID, domain.ErrNotFound)
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("release %s from goal %s: %w", amount, goalID, domain.ErrInvalidAmount)
	}
	if amount.Cmp(g.SavedAmount) > 0 {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("release %s from goal %s (saved %s): %w", amount, goalID, g.SavedAmount, domain.ErrExceedsSaved)
	}

	tx := m.envelopeEntry(domain.KindGoalRelease, g, amount, accountID)
	if err := m.log.Append(tx); err != nil {
		return domain.Transaction{}, domain.Goal{}, fmt.Errorf("release from goal %s: %w", goalID, err)
	}

	g.SavedAmount = g.SavedAmount.Sub(amount)
	if g.SavedAmount.Cmp(decimal.Zero) < 0 {
		g.SavedAmount = decimal.Zero
	}
	g.State = domain.GoalActive
	m.goals[goalID] = g
	return tx, g, nil
}

// ReleaseAndDelete empties a goal into the destination account and then
// deletes it, as one local step. The release entry is in the ledger before
// the goal disappears, so the funds survive even if nothing after this
// call runs.
func (m *Manager) ReleaseAndDelete(goalID, accountID string) (domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, exists := m.goals[goalID]
	if !exists {
		return domain.Transaction{}, fmt.Errorf("delete goal %s: %w", goalID, domain.ErrNotFound)
	}
	var tx domain.Transaction
	if g.SavedAmount.Cmp(decimal.Zero) > 0 {
		var err error
		tx, _, err = m.releaseLocked(goalID, g.SavedAmount, accountID)
		if err != nil {
			return domain.Transaction{}, err
		}
	}
	delete(m.goals, goalID)
	return tx, nil
}

// Get returns the goal identified by id.
func (m *Manager) Get(id string) (domain.Goal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, exists := m.goals[id]
	return g, exists
}

// All returns a copy of the goal set ordered by creation timestamp.
func (m *Manager) All() []domain.Goal {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Goal, 0, len(m.goals))
	for _, g := range m.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Reset replaces the whole goal set. Used by the resync path.
func (m *Manager) Reset(list []domain.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.goals = make(map[string]domain.Goal, len(list))
	for _, g := range list {
		m.goals[g.ID] = g
	}
}

func (m *Manager) envelopeEntry(kind domain.TransactionKind, g domain.Goal, amount decimal.Decimal, accountID string) domain.Transaction {
	description := "Abono a " + g.Name
	if kind == domain.KindGoalRelease {
		description = "Retiro de " + g.Name
	}
	stamp := m.stamp()
	return domain.Transaction{
		Timestamp:   stamp,
		Kind:        kind,
		Amount:      amount,
		Account:     accountID,
		Category:    "Metas",
		Description: description,
		Date:        timeFromStamp(stamp),
		GoalID:      g.ID,
	}
}

func stateFor(g domain.Goal) domain.GoalState {
	if g.SavedAmount.Cmp(g.TargetAmount) >= 0 {
		return domain.GoalCompleted
	}
	return domain.GoalActive
}
