package domain

import "errors"

// Sentinel errors shared across the engine. Callers match them with
// errors.Is; packages wrap them with context via fmt.Errorf and %w.
var (
	// ErrNotFound indicates the referenced entity does not exist locally.
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount indicates a monetary amount that is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidKind indicates a transaction kind outside the enumeration.
	ErrInvalidKind = errors.New("invalid transaction kind")
	// ErrInvalidEntity indicates an entity missing a required field.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrDuplicateTimestamp indicates an append whose timestamp identity is
	// already taken in the ledger.
	ErrDuplicateTimestamp = errors.New("duplicate timestamp")
	// ErrInsufficientFunds indicates a contribution larger than the free
	// balance of its source account.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrExceedsSaved indicates a release larger than the goal's saved amount.
	ErrExceedsSaved = errors.New("release exceeds saved amount")
	// ErrCreditAccount indicates an operation that requires a wallet or
	// debit account was attempted against a credit card.
	ErrCreditAccount = errors.New("operation not allowed on credit account")
	// ErrGoalNotEmpty indicates a plain delete of a goal that still holds
	// funds. Funds must be released to an account first.
	ErrGoalNotEmpty = errors.New("goal still holds funds")
)
