// Package state composes the ledger, the obligation tracker and the goal
// manager into the one injectable store the rest of the system reads.
//
// Mutations are synchronous and run to completion before the call returns,
// so every local read observes the most recent local write. The remote
// store follows behind; see the sync package.
package state

import (
	"sync"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/goals"
	"github.com/galan4520/finanzas/internal/ledger"
	"github.com/galan4520/finanzas/internal/obligations"
)

// Store holds all local collections.
//
// Lock hierarchy: commit is the outermost lock and is never acquired while
// any collection lock or mu is held. The collection locks and mu are leaf
// locks and are never held while acquiring another.
type Store struct {
	Ledger      *ledger.Ledger
	Obligations *obligations.Tracker
	Goals       *goals.Manager
	Stamper     *ledger.Stamper

	// commit serializes whole-state replacement against command mutations:
	// a resync that lands while a command is mid-apply waits here instead
	// of interleaving with it.
	commit sync.RWMutex

	mu            sync.RWMutex
	accounts      []domain.Account
	profile       *domain.Profile
	notification  *domain.NotificationConfig
	categories    []domain.CustomCategory
	family        *domain.FamilyConfig
	gasVersion    string
	schemaVersion string
}

// New creates an empty store. All synthesized transaction identities come
// from the given stamper.
func New(stamper *ledger.Stamper) *Store {
	s := &Store{
		Ledger:      ledger.New(),
		Obligations: obligations.New(),
		Stamper:     stamper,
	}
	s.Goals = goals.New(s.Ledger, s.Accounts, stamper.Next)
	return s
}

// Apply runs one mutation holding the commit lock, so it can never
// interleave with ReplaceAll. All command mutations go through here.
func (s *Store) Apply(fn func() error) error {
	s.commit.Lock()
	defer s.commit.Unlock()
	return fn()
}

// Accounts returns the account catalog: the implicit cash wallet followed
// by the configured cards.
func (s *Store) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0, len(s.accounts)+1)
	out = append(out, domain.Wallet())
	out = append(out, s.accounts...)
	return out
}

// UpsertAccount adds or replaces a card in the catalog.
func (s *Store) UpsertAccount(acct domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.accounts {
		if a.ID == acct.ID {
			s.accounts[i] = acct
			return
		}
	}
	s.accounts = append(s.accounts, acct)
}

// RemoveAccount deletes a card from the catalog.
func (s *Store) RemoveAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Profile returns the stored profile, or nil when none exists.
func (s *Store) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// SetProfile stores the profile.
func (s *Store) SetProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
}

// ReplaceAll swaps the whole local state for the given snapshot. This is
// the resync path: every collection and every auxiliary entity is replaced
// wholesale, and the stamper is advanced past the newest server-side
// identity so new local entries cannot collide with it. The commit lock is
// held for the whole swap; an in-flight Apply finishes first or starts
// after, never halfway through.
func (s *Store) ReplaceAll(snap domain.Snapshot) {
	s.commit.Lock()
	defer s.commit.Unlock()

	s.Ledger.Reset(snap.Transactions)
	s.Obligations.Reset(snap.Obligations)
	s.Goals.Reset(snap.Goals)

	// Goals and obligations carry identities from the same stamper as
	// transactions, so all three feed the scan.
	var newest int64
	for _, tx := range snap.Transactions {
		if tx.Timestamp > newest {
			newest = tx.Timestamp
		}
	}
	for _, g := range snap.Goals {
		if g.Timestamp > newest {
			newest = g.Timestamp
		}
	}
	for _, o := range snap.Obligations {
		if o.Timestamp > newest {
			newest = o.Timestamp
		}
	}
	s.Stamper.Observe(newest)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = nonWallet(snap.Accounts)
	s.profile = snap.Profile
	s.notification = snap.NotificationConfig
	s.categories = snap.CustomCategories
	s.family = snap.FamilyConfig
	s.gasVersion = snap.GasVersion
	s.schemaVersion = snap.SchemaVersion
}

// Snapshot captures the complete local state. It reads under the commit
// lock, so it never observes a command or a resync halfway through. The
// collections are collected before mu is taken; mu is a leaf lock and must
// not be held while calling into them.
func (s *Store) Snapshot() domain.Snapshot {
	s.commit.RLock()
	defer s.commit.RUnlock()

	pending := s.Obligations.All()
	transactions := s.Ledger.All()
	goalList := s.Goals.All()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Snapshot{
		Accounts:           append([]domain.Account{domain.Wallet()}, s.accounts...),
		Obligations:        pending,
		Transactions:       transactions,
		Goals:              goalList,
		Profile:            s.profile,
		NotificationConfig: s.notification,
		CustomCategories:   s.categories,
		FamilyConfig:       s.family,
		GasVersion:         s.gasVersion,
		SchemaVersion:      s.schemaVersion,
	}
}

// nonWallet drops the implicit wallet from a server account list so it is
// never stored twice.
func nonWallet(accounts []domain.Account) []domain.Account {
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Type == domain.AccountWallet || a.ID == domain.WalletID {
			continue
		}
		out = append(out, a)
	}
	return out
}
