package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GoalState is the lifecycle state of a savings goal.
type GoalState string

const (
	GoalActive    GoalState = "active"
	GoalCompleted GoalState = "completed"
)

// Goal is a virtual envelope: money earmarked for a purpose, realized only
// as tagged entries in the shared ledger. SavedAmount is kept alongside
// for display, but the tagged GoalContribution/GoalRelease entries are its
// true derivation; every mutation must keep the two in step.
type Goal struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	State        GoalState       `json:"state"`
	Timestamp    int64           `json:"timestamp"`
}

// Validate checks the invariants a new or updated goal must satisfy.
func (g Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("goal has no id: %w", ErrInvalidEntity)
	}
	if g.TargetAmount.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("goal target %s: %w", g.TargetAmount, ErrInvalidAmount)
	}
	if g.SavedAmount.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("goal saved amount %s is negative: %w", g.SavedAmount, ErrInvalidEntity)
	}
	return nil
}
