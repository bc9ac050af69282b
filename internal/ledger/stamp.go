package ledger

import (
	"sync"
	"time"
)

// Stamper assigns transaction identities: Unix-millisecond timestamps that
// are strictly increasing even when two commands arrive within the same
// millisecond. A rapid double submission therefore gets two distinct
// identities instead of colliding in the ledger.
type Stamper struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewStamper creates a stamper over the given time source. A nil source
// uses the wall clock.
func NewStamper(now func() time.Time) *Stamper {
	if now == nil {
		now = time.Now
	}
	return &Stamper{now: now}
}

// Next returns the next timestamp identity.
func (s *Stamper) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UnixMilli()
	if stamp <= s.last {
		stamp = s.last + 1
	}
	s.last = stamp
	return stamp
}

// Observe tells the stamper about an identity that already exists, such as
// entries arriving from a resync, so future assignments stay above it.
func (s *Stamper) Observe(stamp int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stamp > s.last {
		s.last = stamp
	}
}
