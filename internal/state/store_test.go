package state

import (
	"sync"
	"testing"
	"time"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/ledger"
	"github.com/shopspring/decimal"
)

func newTestStore() *Store {
	return New(ledger.NewStamper(func() time.Time { return time.UnixMilli(1700000000000) }))
}

func TestStore_Accounts_WalletAlwaysFirst(t *testing.T) {
	s := newTestStore()
	s.UpsertAccount(domain.Account{ID: "visa", Name: "Visa", Type: domain.AccountCredit})

	accounts := s.Accounts()
	if len(accounts) != 2 {
		t.Fatalf("Accounts() = %d, want wallet + visa", len(accounts))
	}
	if accounts[0].ID != domain.WalletID {
		t.Errorf("Accounts()[0].ID = %s, want %s", accounts[0].ID, domain.WalletID)
	}
}

func TestStore_UpsertAccount_Replaces(t *testing.T) {
	s := newTestStore()
	s.UpsertAccount(domain.Account{ID: "visa", Name: "Visa", Type: domain.AccountCredit})
	s.UpsertAccount(domain.Account{ID: "visa", Name: "Visa Oro", Type: domain.AccountCredit})

	accounts := s.Accounts()
	if len(accounts) != 2 {
		t.Fatalf("Accounts() = %d, want no duplicate", len(accounts))
	}
	if accounts[1].Name != "Visa Oro" {
		t.Errorf("Name = %s, want replaced Visa Oro", accounts[1].Name)
	}
}

func TestStore_RemoveAccount(t *testing.T) {
	s := newTestStore()
	s.UpsertAccount(domain.Account{ID: "visa", Type: domain.AccountCredit})

	if err := s.RemoveAccount("visa"); err != nil {
		t.Fatalf("RemoveAccount() error = %v", err)
	}
	if err := s.RemoveAccount("visa"); err != domain.ErrNotFound {
		t.Errorf("RemoveAccount() second call error = %v, want ErrNotFound", err)
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	s := newTestStore()
	s.UpsertAccount(domain.Account{ID: "old", Type: domain.AccountDebit})
	if err := s.Ledger.Append(domain.Transaction{
		Timestamp: 1, Kind: domain.KindIncome,
		Amount: decimal.NewFromInt(10), Account: domain.WalletID,
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	s.ReplaceAll(domain.Snapshot{
		Accounts: []domain.Account{
			domain.Wallet(),
			{ID: "nueva", Type: domain.AccountDebit},
		},
		Transactions: []domain.Transaction{{
			Timestamp: 1700000500000, Kind: domain.KindExpense,
			Amount: decimal.NewFromInt(20), Account: domain.WalletID,
		}},
		Profile: &domain.Profile{Name: "Ana"},
	})

	if _, ok := s.Ledger.Get(1); ok {
		t.Error("old transaction survived ReplaceAll")
	}
	if _, ok := s.Ledger.Get(1700000500000); !ok {
		t.Error("server transaction missing after ReplaceAll")
	}

	accounts := s.Accounts()
	if len(accounts) != 2 || accounts[1].ID != "nueva" {
		t.Errorf("Accounts() = %+v, want wallet + nueva", accounts)
	}
	if p := s.Profile(); p == nil || p.Name != "Ana" {
		t.Errorf("Profile() = %+v, want Ana", p)
	}

	// The wallet from the server list must not be stored as a card.
	for _, a := range accounts[1:] {
		if a.ID == domain.WalletID {
			t.Error("wallet stored twice after ReplaceAll")
		}
	}

	// New identities stay above the server's newest timestamp.
	if got := s.Stamper.Next(); got <= 1700000500000 {
		t.Errorf("Stamper.Next() = %d, want above resynced maximum", got)
	}
}

func TestStore_Snapshot_RoundTrip(t *testing.T) {
	s := newTestStore()
	s.UpsertAccount(domain.Account{ID: "visa", Type: domain.AccountCredit, Limit: decimal.NewFromInt(5000)})
	s.SetProfile(domain.Profile{Name: "Ana"})
	if err := s.Ledger.Append(domain.Transaction{
		Timestamp: 7, Kind: domain.KindIncome,
		Amount: decimal.NewFromInt(100), Account: domain.WalletID,
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	snap := s.Snapshot()

	other := newTestStore()
	other.ReplaceAll(snap)

	if _, ok := other.Ledger.Get(7); !ok {
		t.Error("transaction lost in snapshot round trip")
	}
	if len(other.Accounts()) != 2 {
		t.Errorf("Accounts() = %d, want 2", len(other.Accounts()))
	}
	if p := other.Profile(); p == nil || p.Name != "Ana" {
		t.Errorf("Profile() = %+v, want Ana", p)
	}
}

func TestStore_ReplaceAll_ObservesAllIdentities(t *testing.T) {
	s := newTestStore()

	// Goals and obligations share the stamper with transactions; the
	// newest identity may live in any of the three collections.
	s.ReplaceAll(domain.Snapshot{
		Transactions: []domain.Transaction{{
			Timestamp: 1700000500000, Kind: domain.KindIncome,
			Amount: decimal.NewFromInt(10), Account: domain.WalletID,
		}},
		Obligations: []domain.PendingObligation{{
			ID: "d1", Type: domain.ObligationDebt, Timestamp: 1700000700000,
			TotalAmount: decimal.NewFromInt(100), InstallmentCount: 1,
		}},
		Goals: []domain.Goal{{
			ID: "g1", Name: "Viaje", Timestamp: 1700000900000,
			TargetAmount: decimal.NewFromInt(500),
		}},
	})

	if got := s.Stamper.Next(); got <= 1700000900000 {
		t.Errorf("Stamper.Next() = %d, want above the resynced goal identity", got)
	}
}

func TestStore_ReplaceAll_WaitsForApply(t *testing.T) {
	s := newTestStore()

	entered := make(chan struct{})
	proceed := make(chan struct{})
	applied := make(chan struct{})
	go func() {
		defer close(applied)
		_ = s.Apply(func() error {
			close(entered)
			<-proceed
			return s.Ledger.Append(domain.Transaction{
				Timestamp: 42, Kind: domain.KindIncome,
				Amount: decimal.NewFromInt(10), Account: domain.WalletID,
			})
		})
	}()
	<-entered

	replaced := make(chan struct{})
	go func() {
		defer close(replaced)
		s.ReplaceAll(domain.Snapshot{})
	}()

	select {
	case <-replaced:
		t.Fatal("ReplaceAll ran while a mutation was mid-apply")
	case <-time.After(50 * time.Millisecond):
	}

	close(proceed)
	<-applied
	<-replaced

	// The mutation finished before the swap, so the replacement is the
	// whole server snapshot with nothing of the mutation left behind.
	if got := s.Ledger.Len(); got != 0 {
		t.Errorf("Ledger.Len() = %d, want 0 after replacement", got)
	}
}

func TestStore_ConcurrentSnapshotAndMutations(t *testing.T) {
	s := New(ledger.NewStamper(nil))
	if err := s.Ledger.Append(domain.Transaction{
		Timestamp: 1, Kind: domain.KindIncome,
		Amount: decimal.NewFromInt(100000), Account: domain.WalletID,
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Goals.Create(domain.Goal{
		ID: "viaje", Name: "Viaje",
		TargetAmount: decimal.NewFromInt(100000), Timestamp: 2,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	const iterations = 200
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			s.Snapshot()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			err := s.Apply(func() error {
				_, _, err := s.Goals.Contribute("viaje", decimal.NewFromInt(1), domain.WalletID)
				return err
			})
			if err != nil {
				t.Errorf("Contribute() error = %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			_ = s.Apply(func() error {
				s.UpsertAccount(domain.Account{ID: "visa", Name: "Visa", Type: domain.AccountCredit})
				return nil
			})
		}
	}()
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Snapshot, Contribute and UpsertAccount wedged against each other")
	}

	g, ok := s.Goals.Get("viaje")
	if !ok {
		t.Fatal("Get(viaje) not found")
	}
	if !g.SavedAmount.Equal(decimal.NewFromInt(iterations)) {
		t.Errorf("SavedAmount = %s, want %d", g.SavedAmount, iterations)
	}
}

func TestStore_Profile_ReturnsCopy(t *testing.T) {
	s := newTestStore()
	s.SetProfile(domain.Profile{Name: "Ana"})

	p := s.Profile()
	p.Name = "Eva"

	if got := s.Profile(); got.Name != "Ana" {
		t.Error("mutating the returned profile changed the store")
	}
}
