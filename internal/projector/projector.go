// Package projector derives every balance the system shows from the
// ledger, the obligation set and the account catalog.
//
// Nothing here holds state and nothing is cached: each function is a pure
// fold over its inputs, recomputed on every read, so two calls with the
// same inputs always produce identical results.
package projector

import (
	"fmt"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/shopspring/decimal"
)

// netFlow sums credits minus debits for the entries of a single account.
func netFlow(txs []domain.Transaction, account string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Account != account {
			continue
		}
		if tx.Kind.Credits() {
			total = total.Add(tx.Amount)
		} else {
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

// WalletBalance is the cash wallet's balance: income plus goal releases,
// minus expenses and goal contributions, on the wallet account.
func WalletBalance(txs []domain.Transaction) decimal.Decimal {
	return netFlow(txs, domain.WalletID)
}

// DebitAccountBalance is a debit card's balance: its opening amount plus
// the net flow of its ledger entries. The opening amount is the one seed a
// balance takes from outside the ledger.
func DebitAccountBalance(txs []domain.Transaction, card domain.Account) decimal.Decimal {
	return card.OpeningAmount.Add(netFlow(txs, card.ID))
}

// FreeBalance is the spendable balance of a wallet or debit account. It is
// the amount a goal contribution may draw from. Credit accounts have no
// free balance to draw on.
func FreeBalance(txs []domain.Transaction, accounts []domain.Account, accountID string) (decimal.Decimal, error) {
	if accountID == domain.WalletID {
		return WalletBalance(txs), nil
	}
	for _, acct := range accounts {
		if acct.ID != accountID {
			continue
		}
		switch acct.Type {
		case domain.AccountWallet:
			return netFlow(txs, acct.ID), nil
		case domain.AccountDebit:
			return DebitAccountBalance(txs, acct), nil
		default:
			return decimal.Zero, fmt.Errorf("free balance of %s: %w", accountID, domain.ErrCreditAccount)
		}
	}
	return decimal.Zero, fmt.Errorf("free balance of %s: %w", accountID, domain.ErrNotFound)
}

// CreditAvailable is a credit card's remaining line: its limit minus the
// remaining debt of its obligations, floored at zero so an over-committed
// card never reports negative availability.
func CreditAvailable(obls []domain.PendingObligation, card domain.Account) decimal.Decimal {
	available := card.Limit.Sub(RemainingDebtOn(obls, card.ID))
	if available.Cmp(decimal.Zero) < 0 {
		return decimal.Zero
	}
	return available
}

// RemainingDebtOn sums the remaining debt of the obligations riding on
// one card.
func RemainingDebtOn(obls []domain.PendingObligation, cardID string) decimal.Decimal {
	debt := decimal.Zero
	for _, o := range obls {
		if o.CardAccount == cardID {
			debt = debt.Add(o.RemainingDebt())
		}
	}
	return debt
}

// TotalRemainingDebt sums the remaining debt across all obligations.
func TotalRemainingDebt(obls []domain.PendingObligation) decimal.Decimal {
	debt := decimal.Zero
	for _, o := range obls {
		debt = debt.Add(o.RemainingDebt())
	}
	return debt
}

// TotalBalance is the money the user actually has: the net flow of every
// ledger entry plus the debit accounts' opening seeds. Credit lines are
// not money and do not enter the total.
func TotalBalance(txs []domain.Transaction, accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind.Credits() {
			total = total.Add(tx.Amount)
		} else {
			total = total.Sub(tx.Amount)
		}
	}
	for _, acct := range accounts {
		if acct.Type == domain.AccountDebit {
			total = total.Add(acct.OpeningAmount)
		}
	}
	return total
}

// CreditUtilization is the remaining debt as a percentage of the total
// credit limit across all credit accounts. Zero when no limit exists.
func CreditUtilization(obls []domain.PendingObligation, accounts []domain.Account) decimal.Decimal {
	limit := decimal.Zero
	for _, acct := range accounts {
		if acct.Type == domain.AccountCredit {
			limit = limit.Add(acct.Limit)
		}
	}
	if limit.Cmp(decimal.Zero) <= 0 {
		return decimal.Zero
	}
	return TotalRemainingDebt(obls).Div(limit).Mul(decimal.NewFromInt(100))
}

// GoalSaved replays the tagged entries of one goal: contributions minus
// releases, clamped at zero from below. This is the true derivation of a
// goal's saved amount; the stored SavedAmount field is only its display
// copy.
func GoalSaved(txs []domain.Transaction, goalID string) decimal.Decimal {
	saved := decimal.Zero
	for _, tx := range txs {
		if tx.GoalID != goalID {
			continue
		}
		switch tx.Kind {
		case domain.KindGoalContribution:
			saved = saved.Add(tx.Amount)
		case domain.KindGoalRelease:
			saved = saved.Sub(tx.Amount)
		}
	}
	if saved.Cmp(decimal.Zero) < 0 {
		return decimal.Zero
	}
	return saved
}
