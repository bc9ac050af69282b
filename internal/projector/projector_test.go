package projector

import (
	"errors"
	"testing"
	"time"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/shopspring/decimal"
)

func tx(stamp int64, kind domain.TransactionKind, amount, account string) domain.Transaction {
	return domain.Transaction{
		Timestamp: stamp,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
		Account:   account,
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func goalTx(stamp int64, kind domain.TransactionKind, amount, account, goalID string) domain.Transaction {
	t := tx(stamp, kind, amount, account)
	t.GoalID = goalID
	return t
}

func TestWalletBalance(t *testing.T) {
	// Income 1000, expense 200, goal contribution 100 out of the wallet.
	txs := []domain.Transaction{
		tx(1, domain.KindIncome, "1000", domain.WalletID),
		tx(2, domain.KindExpense, "200", domain.WalletID),
		goalTx(3, domain.KindGoalContribution, "100", domain.WalletID, "g1"),
		tx(4, domain.KindExpense, "999", "bbva"),
	}

	got := WalletBalance(txs)
	if !got.Equal(decimal.NewFromInt(700)) {
		t.Errorf("WalletBalance() = %s, want 700", got)
	}
}

func TestWalletBalance_Idempotent(t *testing.T) {
	txs := []domain.Transaction{
		tx(1, domain.KindIncome, "1000", domain.WalletID),
		tx(2, domain.KindExpense, "333.33", domain.WalletID),
	}

	first := WalletBalance(txs)
	second := WalletBalance(txs)
	if !first.Equal(second) {
		t.Errorf("WalletBalance() = %s then %s, want identical", first, second)
	}
}

func TestDebitAccountBalance(t *testing.T) {
	card := domain.Account{
		ID:            "bbva",
		Name:          "BBVA Débito",
		Type:          domain.AccountDebit,
		OpeningAmount: decimal.NewFromInt(500),
	}
	txs := []domain.Transaction{
		tx(1, domain.KindIncome, "200", "bbva"),
		tx(2, domain.KindExpense, "50", "bbva"),
		tx(3, domain.KindExpense, "999", domain.WalletID),
	}

	got := DebitAccountBalance(txs, card)
	if !got.Equal(decimal.NewFromInt(650)) {
		t.Errorf("DebitAccountBalance() = %s, want 650", got)
	}
}

func TestFreeBalance(t *testing.T) {
	debit := domain.Account{ID: "bbva", Type: domain.AccountDebit, OpeningAmount: decimal.NewFromInt(100)}
	credit := domain.Account{ID: "visa", Type: domain.AccountCredit, Limit: decimal.NewFromInt(1000)}
	accounts := []domain.Account{domain.Wallet(), debit, credit}
	txs := []domain.Transaction{
		tx(1, domain.KindIncome, "300", domain.WalletID),
		tx(2, domain.KindIncome, "50", "bbva"),
	}

	tests := []struct {
		name    string
		account string
		want    string
		wantErr error
	}{
		{"wallet", domain.WalletID, "300", nil},
		{"debit", "bbva", "150", nil},
		{"credit rejected", "visa", "0", domain.ErrCreditAccount},
		{"unknown", "hsbc", "0", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FreeBalance(txs, accounts, tt.account)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FreeBalance() error = %v, want %v", err, tt.wantErr)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("FreeBalance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCreditAvailable(t *testing.T) {
	card := domain.Account{ID: "visa", Type: domain.AccountCredit, Limit: decimal.NewFromInt(100)}

	obl := func(paid string) domain.PendingObligation {
		return domain.PendingObligation{
			ID:               "d1",
			CardAccount:      "visa",
			TotalAmount:      decimal.NewFromInt(100),
			InstallmentCount: 4,
			TotalAmountPaid:  decimal.RequireFromString(paid),
			Type:             domain.ObligationDebt,
		}
	}

	tests := []struct {
		name string
		obls []domain.PendingObligation
		want string
	}{
		{"no debt", nil, "100"},
		{"partial debt", []domain.PendingObligation{obl("40")}, "40"},
		{"maxed out", []domain.PendingObligation{obl("0")}, "0"},
		{
			"debt beyond limit clamps to zero",
			[]domain.PendingObligation{obl("0"), {
				ID: "d2", CardAccount: "visa",
				TotalAmount: decimal.NewFromInt(50), InstallmentCount: 1,
				Type: domain.ObligationDebt,
			}},
			"0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreditAvailable(tt.obls, card)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("CreditAvailable() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCreditUtilization(t *testing.T) {
	visa := domain.Account{ID: "visa", Type: domain.AccountCredit, Limit: decimal.NewFromInt(100)}
	obls := []domain.PendingObligation{{
		ID: "d1", CardAccount: "visa",
		TotalAmount: decimal.NewFromInt(100), InstallmentCount: 1,
		Type: domain.ObligationDebt,
	}}

	got := CreditUtilization(obls, []domain.Account{visa})
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("CreditUtilization() = %s, want 100", got)
	}
}

func TestCreditUtilization_NoLimit(t *testing.T) {
	got := CreditUtilization(nil, []domain.Account{domain.Wallet()})
	if !got.Equal(decimal.Zero) {
		t.Errorf("CreditUtilization() = %s, want 0 with no credit line", got)
	}
}

func TestTotalBalance(t *testing.T) {
	accounts := []domain.Account{
		domain.Wallet(),
		{ID: "bbva", Type: domain.AccountDebit, OpeningAmount: decimal.NewFromInt(500)},
		{ID: "visa", Type: domain.AccountCredit, Limit: decimal.NewFromInt(10000)},
	}
	txs := []domain.Transaction{
		tx(1, domain.KindIncome, "1000", domain.WalletID),
		tx(2, domain.KindExpense, "300", "bbva"),
	}

	// 1000 - 300 + opening 500. The credit limit is not money.
	got := TotalBalance(txs, accounts)
	if !got.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("TotalBalance() = %s, want 1200", got)
	}
}

func TestTotalRemainingDebt(t *testing.T) {
	obls := []domain.PendingObligation{
		{
			ID: "d1", CardAccount: "visa",
			TotalAmount: decimal.NewFromInt(1200), InstallmentCount: 12,
			TotalAmountPaid: decimal.NewFromInt(300),
			Type:            domain.ObligationDebt,
		},
		{
			ID: "d2", CardAccount: "amex",
			TotalAmount: decimal.NewFromInt(100), InstallmentCount: 1,
			Type: domain.ObligationDebt,
		},
	}

	got := TotalRemainingDebt(obls)
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("TotalRemainingDebt() = %s, want 1000", got)
	}
}

func TestGoalSaved(t *testing.T) {
	txs := []domain.Transaction{
		goalTx(1, domain.KindGoalContribution, "200", domain.WalletID, "g1"),
		goalTx(2, domain.KindGoalContribution, "100", domain.WalletID, "g1"),
		goalTx(3, domain.KindGoalRelease, "50", domain.WalletID, "g1"),
		goalTx(4, domain.KindGoalContribution, "999", domain.WalletID, "g2"),
		tx(5, domain.KindIncome, "999", domain.WalletID),
	}

	got := GoalSaved(txs, "g1")
	if !got.Equal(decimal.NewFromInt(250)) {
		t.Errorf("GoalSaved() = %s, want 250", got)
	}
}

func TestGoalSaved_ClampedAtZero(t *testing.T) {
	txs := []domain.Transaction{
		goalTx(1, domain.KindGoalRelease, "100", domain.WalletID, "g1"),
	}

	got := GoalSaved(txs, "g1")
	if !got.Equal(decimal.Zero) {
		t.Errorf("GoalSaved() = %s, want clamped to 0", got)
	}
}
