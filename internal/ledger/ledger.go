// Package ledger holds the append-only transaction log that is the single
// source of truth for every balance the engine reports.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/galan4520/finanzas/internal/domain"
)

// Ledger is the timestamp-ordered sequence of financial events. It is the
// authoritative cash-flow record; every other number is derived from it.
//
// Transactions are kept in ascending timestamp order. No two transactions
// may share a timestamp: the timestamp is the entry's identity.
type Ledger struct {
	mu      sync.Mutex
	entries []domain.Transaction
	byStamp map[int64]struct{}
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		entries: make([]domain.Transaction, 0),
		byStamp: make(map[int64]struct{}),
	}
}

// Append adds a transaction to the ledger. It fails with
// domain.ErrDuplicateTimestamp when the timestamp identity is already
// taken, and with a validation error when the transaction is malformed.
func (l *Ledger) Append(tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.byStamp[tx.Timestamp]; taken {
		return fmt.Errorf("append transaction %d: %w", tx.Timestamp, domain.ErrDuplicateTimestamp)
	}
	l.byStamp[tx.Timestamp] = struct{}{}
	l.entries = append(l.entries, tx)
	l.sortLocked()
	return nil
}

// Replace swaps the transaction identified by timestamp for a new one. The
// replacement keeps the original timestamp identity regardless of what the
// caller filled in.
func (l *Ledger) Replace(timestamp int64, tx domain.Transaction) error {
	tx.Timestamp = timestamp
	if err := tx.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.Timestamp == timestamp {
			l.entries[i] = tx
			return nil
		}
	}
	return fmt.Errorf("replace transaction %d: %w", timestamp, domain.ErrNotFound)
}

// Remove retires the transaction identified by timestamp.
func (l *Ledger) Remove(timestamp int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.Timestamp == timestamp {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			delete(l.byStamp, timestamp)
			return nil
		}
	}
	return fmt.Errorf("remove transaction %d: %w", timestamp, domain.ErrNotFound)
}

// All returns a copy of the ledger, newest first, for display. Derived
// totals never depend on this order.
func (l *Ledger) All() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Transaction, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Get returns the transaction identified by timestamp.
func (l *Ledger) Get(timestamp int64) (domain.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.byStamp[timestamp]; !taken {
		return domain.Transaction{}, false
	}
	for _, e := range l.entries {
		if e.Timestamp == timestamp {
			return e, true
		}
	}
	return domain.Transaction{}, false
}

// Len reports the number of transactions in the ledger.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset replaces the whole ledger with the given transactions. Used by the
// resync path; entries with duplicate timestamps are dropped, keeping the
// first occurrence, so a malformed server snapshot cannot violate the
// identity invariant locally.
func (l *Ledger) Reset(txs []domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = l.entries[:0]
	l.byStamp = make(map[int64]struct{}, len(txs))
	for _, tx := range txs {
		if _, taken := l.byStamp[tx.Timestamp]; taken {
			continue
		}
		l.byStamp[tx.Timestamp] = struct{}{}
		l.entries = append(l.entries, tx)
	}
	l.sortLocked()
}

func (l *Ledger) sortLocked() {
	sort.Slice(l.entries, func(i, j int) bool {
		return l.entries[i].Timestamp < l.entries[j].Timestamp
	})
}
