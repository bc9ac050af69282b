package domain

import "github.com/shopspring/decimal"

// AccountType distinguishes the cash wallet from bank-backed card aliases.
type AccountType string

const (
	// AccountWallet is the single cash wallet. Its balance is purely the
	// sum of its ledger entries.
	AccountWallet AccountType = "wallet"
	// AccountDebit is a debit card bound to a bank. Its opening amount
	// seeds the balance; everything after that flows through the ledger.
	AccountDebit AccountType = "debit"
	// AccountCredit is a credit card. It has no balance of its own; its
	// available credit is the limit minus outstanding obligation debt.
	AccountCredit AccountType = "credit"
)

// WalletID is the identity of the implicit cash wallet account.
const WalletID = "efectivo"

// Account is an identity, not a balance. Every number shown for an
// account is a projection over the ledger and the obligation set.
type Account struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Bank string      `json:"bank,omitempty"`
	Type AccountType `json:"type"`
	// OpeningAmount seeds a debit account's balance. It is the only place
	// a balance is sourced outside the ledger.
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	// Limit is the credit line of a credit account. Zero otherwise.
	Limit decimal.Decimal `json:"limit"`
}

// Wallet returns the implicit cash wallet account.
func Wallet() Account {
	return Account{ID: WalletID, Name: "Efectivo", Type: AccountWallet}
}
