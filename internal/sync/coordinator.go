// Package sync keeps the immediately-visible local state and the slow,
// non-transactional remote store in step.
//
// The model is optimistic: a command mutates local state synchronously, so
// the very next read reflects it, then the matching remote writes go out
// in the background. Remote success schedules a delayed full resync that
// replaces local state with the server's authoritative snapshot. Remote
// failure keeps the local mutation and marks the state diverged; the next
// resync resolves it by last-full-resync-wins, and any local change it
// tramples is reported instead of silently dropped.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/galan4520/finanzas/internal/remote"
	"github.com/galan4520/finanzas/internal/state"
	"github.com/rs/zerolog"
)

// State is the coordinator's position in the per-command machine.
type State string

const (
	// StateIdle means no command is in flight and nothing is unreconciled.
	StateIdle State = "idle"
	// StateApplied means a command has mutated local state and its remote
	// writes have not started yet.
	StateApplied State = "applied"
	// StateDispatching means remote writes are on the wire.
	StateDispatching State = "dispatching"
	// StateReconciled means the last resync replaced local state with the
	// server's snapshot.
	StateReconciled State = "reconciled"
	// StateDiverged means local state holds a mutation the server has not
	// acknowledged. It persists until a resync overwrites it.
	StateDiverged State = "diverged"
)

// DivergenceReason names why local and remote state disagree.
type DivergenceReason string

const (
	// ReasonWriteFailed: a remote write failed and the local mutation was
	// deliberately kept.
	ReasonWriteFailed DivergenceReason = "remote_write_failed"
	// ReasonSuperseded: a resync replaced local state while unacknowledged
	// local mutations existed, so those mutations are gone.
	ReasonSuperseded DivergenceReason = "superseded_by_server"
)

// Divergence is one reportable local/remote disagreement.
type Divergence struct {
	Command string           `json:"command"`
	Reason  DivergenceReason `json:"reason"`
	Detail  string           `json:"detail,omitempty"`
	At      time.Time        `json:"at"`
}

// Status is the coordinator's externally visible condition.
type Status struct {
	State          State       `json:"state"`
	Unacknowledged int         `json:"unacknowledged"`
	Divergences    int         `json:"divergences"`
	LastDivergence *Divergence `json:"last_divergence,omitempty"`
	LastSync       time.Time   `json:"last_sync,omitempty"`
}

// Command couples a local mutation with the remote writes that mirror it.
// Apply runs synchronously and returns the writes to dispatch; if it
// fails, nothing was mutated and nothing is dispatched.
type Command struct {
	Name  string
	Apply func() ([]remote.Write, error)
}

// Coordinator drives commands through Applied, Dispatching and
// Reconciled/Diverged, and owns the delayed-resync timer.
type Coordinator struct {
	store       *state.Store
	gateway     remote.Service
	clock       Clock
	resyncDelay time.Duration
	log         zerolog.Logger

	mu             stdsync.Mutex
	state          State
	unacked        int
	divergences    int
	lastDivergence *Divergence
	lastSync       time.Time
	resyncTimer    Timer
	onDivergence   func(Divergence)

	inflight stdsync.WaitGroup
}

// New creates a coordinator. resyncDelay is how long after a successful
// remote write the full resync fires.
func New(store *state.Store, gateway remote.Service, clock Clock, resyncDelay time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:       store,
		gateway:     gateway,
		clock:       clock,
		resyncDelay: resyncDelay,
		log:         log,
		state:       StateIdle,
	}
}

// OnDivergence registers a callback invoked for every divergence, after it
// has been counted and logged. Intended for the UI's merge prompt.
func (c *Coordinator) OnDivergence(f func(Divergence)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDivergence = f
}

// Execute runs a command: the local mutation synchronously, the remote
// writes in the background. A validation error from Apply means nothing
// was mutated; it is returned directly and nothing is dispatched.
// The local mutation runs under the store's commit lock, so a resync can
// never land halfway through it; only the writes of a single command are
// sequenced against each other.
func (c *Coordinator) Execute(ctx context.Context, cmd Command) error {
	var writes []remote.Write
	if err := c.store.Apply(func() error {
		var err error
		writes, err = cmd.Apply()
		return err
	}); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateApplied
	c.unacked++
	c.mu.Unlock()

	c.log.Debug().Str("command", cmd.Name).Int("writes", len(writes)).Msg("Command applied locally")

	if len(writes) == 0 {
		c.ack()
		return nil
	}

	// The dispatch must outlive the request that triggered it; the local
	// mutation is already visible and the write merely follows.
	bg := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go c.dispatch(bg, cmd.Name, writes)
	return nil
}

// dispatch sends one command's writes in order. The order matters for
// compound commands: a goal deletion's release entry must reach the server
// before the goal row disappears.
func (c *Coordinator) dispatch(ctx context.Context, name string, writes []remote.Write) {
	defer c.inflight.Done()

	c.mu.Lock()
	c.state = StateDispatching
	c.mu.Unlock()

	for _, w := range writes {
		if err := c.gateway.Submit(ctx, w); err != nil {
			c.log.Warn().
				Err(err).
				Str("command", name).
				Str("action", string(w.Action)).
				Str("tipo", string(w.Collection)).
				Msg("Remote write failed; keeping local mutation")
			c.diverge(Divergence{
				Command: name,
				Reason:  ReasonWriteFailed,
				Detail:  err.Error(),
				At:      c.clock.Now(),
			})
			return
		}
	}

	c.ack()
	c.scheduleResync()
}

// ack marks one applied command as acknowledged by the server.
func (c *Coordinator) ack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unacked > 0 {
		c.unacked--
	}
}

func (c *Coordinator) diverge(d Divergence) {
	c.mu.Lock()
	c.state = StateDiverged
	c.divergences++
	c.lastDivergence = &d
	handler := c.onDivergence
	c.mu.Unlock()

	if handler != nil {
		handler(d)
	}
}

// scheduleResync arms the delayed full resync, replacing any timer already
// armed so a burst of commands resolves into one resync.
func (c *Coordinator) scheduleResync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resyncTimer != nil {
		c.resyncTimer.Stop()
	}
	c.resyncTimer = c.clock.AfterFunc(c.resyncDelay, func() {
		if err := c.Resync(context.Background()); err != nil {
			c.log.Warn().Err(err).Msg("Scheduled resync failed")
		}
	})
}

// Resync fetches the authoritative snapshot and replaces all local state
// with it. If unacknowledged local mutations exist at that moment they are
// about to be lost to last-full-resync-wins, and that loss is reported as
// a divergence rather than happening silently.
func (c *Coordinator) Resync(ctx context.Context) error {
	snap, err := c.gateway.Fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Resync fetch failed; local state unchanged")
		return err
	}

	c.mu.Lock()
	superseded := c.unacked
	c.mu.Unlock()

	c.store.ReplaceAll(snap)

	c.mu.Lock()
	c.state = StateReconciled
	c.unacked = 0
	c.lastSync = c.clock.Now()
	c.mu.Unlock()

	if superseded > 0 {
		c.log.Warn().Int("mutations", superseded).Msg("Local changes superseded by server state")
		c.diverge(Divergence{
			Command: "resync",
			Reason:  ReasonSuperseded,
			Detail:  "local changes replaced by server snapshot before acknowledgement",
			At:      c.clock.Now(),
		})
	} else {
		c.log.Info().Msg("Resynchronized with remote store")
	}
	return nil
}

// Status reports the coordinator's current condition.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		State:          c.state,
		Unacknowledged: c.unacked,
		Divergences:    c.divergences,
		LastDivergence: c.lastDivergence,
		LastSync:       c.lastSync,
	}
}

// Flush waits for in-flight dispatches to finish. Used on shutdown and by
// tests that need a deterministic point after the background writes.
func (c *Coordinator) Flush() {
	c.inflight.Wait()
}

// Store exposes the underlying store for read-side handlers.
func (c *Coordinator) Store() *state.Store { return c.store }
