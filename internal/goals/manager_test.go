package goals

import (
	"errors"
	"testing"
	"time"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/ledger"
	"github.com/galan4520/finanzas/internal/projector"
	"github.com/shopspring/decimal"
)

func newTestManager(t *testing.T) (*Manager, *ledger.Ledger) {
	t.Helper()
	log := ledger.New()
	stamper := ledger.NewStamper(func() time.Time { return time.UnixMilli(1700000000000) })
	accounts := func() []domain.Account { return []domain.Account{domain.Wallet()} }
	return New(log, accounts, stamper.Next), log
}

func fund(t *testing.T, log *ledger.Ledger, amount string) {
	t.Helper()
	err := log.Append(domain.Transaction{
		Timestamp: 1,
		Kind:      domain.KindIncome,
		Amount:    decimal.RequireFromString(amount),
		Account:   domain.WalletID,
		Date:      time.UnixMilli(1),
	})
	if err != nil {
		t.Fatalf("funding the wallet: %v", err)
	}
}

func goal(id, name string, target string) domain.Goal {
	return domain.Goal{
		ID:           id,
		Name:         name,
		TargetAmount: decimal.RequireFromString(target),
		State:        domain.GoalActive,
		Timestamp:    1,
	}
}

func TestManager_Contribute(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tx, g, err := m.Contribute("g1", decimal.NewFromInt(200), domain.WalletID)
	if err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}

	if tx.Kind != domain.KindGoalContribution {
		t.Errorf("Kind = %s, want goal_contribution", tx.Kind)
	}
	if tx.GoalID != "g1" {
		t.Errorf("GoalID = %s, want g1", tx.GoalID)
	}
	if tx.Description != "Abono a Vacaciones" {
		t.Errorf("Description = %q, want %q", tx.Description, "Abono a Vacaciones")
	}
	if !g.SavedAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("SavedAmount = %s, want 200", g.SavedAmount)
	}
	if g.State != domain.GoalActive {
		t.Errorf("State = %s, want active below target", g.State)
	}

	// The contribution debits the wallet like an expense.
	if got := projector.WalletBalance(log.All()); !got.Equal(decimal.NewFromInt(800)) {
		t.Errorf("WalletBalance() = %s, want 800", got)
	}
}

func TestManager_Contribute_InsufficientFunds(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "100")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, _, err := m.Contribute("g1", decimal.NewFromInt(200), domain.WalletID)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("Contribute() error = %v, want ErrInsufficientFunds", err)
	}
	if got := log.Len(); got != 1 {
		t.Errorf("ledger Len() = %d, rejected contribution must not append", got)
	}
	g, _ := m.Get("g1")
	if !g.SavedAmount.Equal(decimal.Zero) {
		t.Errorf("SavedAmount = %s, want untouched 0", g.SavedAmount)
	}
}

func TestManager_Contribute_CompletesAtTarget(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, g, err := m.Contribute("g1", decimal.NewFromInt(500), domain.WalletID)
	if err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}
	if g.State != domain.GoalCompleted {
		t.Errorf("State = %s, want completed at target", g.State)
	}
}

func TestManager_Release(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := m.Contribute("g1", decimal.NewFromInt(500), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}

	tx, g, err := m.Release("g1", decimal.NewFromInt(150), domain.WalletID)
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	if tx.Kind != domain.KindGoalRelease {
		t.Errorf("Kind = %s, want goal_release", tx.Kind)
	}
	if tx.Description != "Retiro de Vacaciones" {
		t.Errorf("Description = %q, want %q", tx.Description, "Retiro de Vacaciones")
	}
	if !g.SavedAmount.Equal(decimal.NewFromInt(350)) {
		t.Errorf("SavedAmount = %s, want 350", g.SavedAmount)
	}
	// A completed goal reopens on any release.
	if g.State != domain.GoalActive {
		t.Errorf("State = %s, want active after release", g.State)
	}
	// Money is back in the wallet: 1000 - 500 + 150.
	if got := projector.WalletBalance(log.All()); !got.Equal(decimal.NewFromInt(650)) {
		t.Errorf("WalletBalance() = %s, want 650", got)
	}
}

func TestManager_Release_ExceedsSaved(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := m.Contribute("g1", decimal.NewFromInt(100), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}
	before := log.Len()

	_, _, err := m.Release("g1", decimal.NewFromInt(200), domain.WalletID)
	if !errors.Is(err, domain.ErrExceedsSaved) {
		t.Errorf("Release() error = %v, want ErrExceedsSaved", err)
	}
	if got := log.Len(); got != before {
		t.Errorf("ledger Len() = %d, rejected release must not append", got)
	}
	g, _ := m.Get("g1")
	if !g.SavedAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("SavedAmount = %s, want untouched 100", g.SavedAmount)
	}
}

func TestManager_SavedMatchesLedgerReplay(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, _, err := m.Contribute("g1", decimal.NewFromInt(300), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}
	if _, _, err := m.Release("g1", decimal.NewFromInt(120), domain.WalletID); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, _, err := m.Contribute("g1", decimal.NewFromInt(50), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}

	g, _ := m.Get("g1")
	replayed := projector.GoalSaved(log.All(), "g1")
	if !g.SavedAmount.Equal(replayed) {
		t.Errorf("SavedAmount = %s, ledger replay = %s, must match", g.SavedAmount, replayed)
	}
}

func TestManager_Delete_RejectsNonEmpty(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := m.Contribute("g1", decimal.NewFromInt(100), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}

	err := m.Delete("g1")
	if !errors.Is(err, domain.ErrGoalNotEmpty) {
		t.Errorf("Delete() error = %v, want ErrGoalNotEmpty", err)
	}
	if _, ok := m.Get("g1"); !ok {
		t.Error("Get(g1) not found, rejected delete must keep the goal")
	}
}

func TestManager_Delete_Empty(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := m.Delete("g1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := m.Get("g1"); ok {
		t.Error("Get(g1) found after delete")
	}
}

func TestManager_ReleaseAndDelete(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := m.Contribute("g1", decimal.NewFromInt(250), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}

	tx, err := m.ReleaseAndDelete("g1", domain.WalletID)
	if err != nil {
		t.Fatalf("ReleaseAndDelete() error = %v", err)
	}

	if _, ok := m.Get("g1"); ok {
		t.Error("Get(g1) found after ReleaseAndDelete")
	}
	if !tx.Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("release Amount = %s, want full 250", tx.Amount)
	}
	// The release entry outlives the goal in the ledger.
	if stored, ok := log.Get(tx.Timestamp); !ok || stored.Kind != domain.KindGoalRelease {
		t.Error("release entry missing from the ledger after delete")
	}
	// Funds are back where they started.
	if got := projector.WalletBalance(log.All()); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("WalletBalance() = %s, want 1000", got)
	}
}

func TestManager_ReleaseAndDelete_Empty(t *testing.T) {
	m, log := newTestManager(t)
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tx, err := m.ReleaseAndDelete("g1", domain.WalletID)
	if err != nil {
		t.Fatalf("ReleaseAndDelete() error = %v", err)
	}
	if tx.Timestamp != 0 {
		t.Errorf("empty goal produced a release entry: %+v", tx)
	}
	if got := log.Len(); got != 0 {
		t.Errorf("ledger Len() = %d, want 0", got)
	}
}

func TestManager_Update_PreservesSavedAmount(t *testing.T) {
	m, log := newTestManager(t)
	fund(t, log, "1000")
	if err := m.Create(goal("g1", "Vacaciones", "500")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := m.Contribute("g1", decimal.NewFromInt(300), domain.WalletID); err != nil {
		t.Fatalf("Contribute() error = %v", err)
	}

	edited := goal("g1", "Vacaciones 2027", "280")
	edited.SavedAmount = decimal.NewFromInt(9999)
	if err := m.Update("g1", edited); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	g, _ := m.Get("g1")
	if !g.SavedAmount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("SavedAmount = %s, edits must not change the balance", g.SavedAmount)
	}
	if g.Name != "Vacaciones 2027" {
		t.Errorf("Name = %s, want updated name", g.Name)
	}
	// Lowering the target below the saved amount completes the goal.
	if g.State != domain.GoalCompleted {
		t.Errorf("State = %s, want completed when saved >= target", g.State)
	}
}
