// Package cloudsync keeps the local ledger document mirrored to the
// per-identity remote store: a debounced push scheduler for local mutations
// and the login-time pull. The policy is local-first, cloud-best-effort;
// remote failures never block a local operation.
package cloudsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/moumensalem/masroof/internal/identity"
	"github.com/moumensalem/masroof/internal/ledger"
)

// Remote abstracts the per-identity document store. Read returns nil when no
// document exists for the uid. WriteMerge must leave fields outside the
// document untouched (server timestamps ride alongside the data).
//
//go:generate mockgen -source=scheduler.go -destination=remote_mock.go -package=cloudsync
type Remote interface {
	Read(ctx context.Context, uid string) (*ledger.Document, error)
	WriteMerge(ctx context.Context, uid string, doc *ledger.Document) error
}

// Timer is the pending-delay handle owned by the scheduler.
type Timer interface {
	Stop() bool
}

// TimerFactory creates a delayed call. Tests swap it for a manual trigger.
type TimerFactory func(d time.Duration, fn func()) Timer

func stdTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Scheduler coalesces bursts of local mutations into one outbound write.
// Each Schedule call cancels any pending (not in-flight) timer and restarts
// the countdown, so only the last mutation of a burst pushes, and the push
// reflects the document as it stands at fire time.
type Scheduler struct {
	remote   Remote
	state    *ledger.State
	ident    func() *identity.Identity
	delay    time.Duration
	newTimer TimerFactory

	mu      sync.Mutex
	pending Timer
	gen     uint64
}

func NewScheduler(remote Remote, state *ledger.State, ident func() *identity.Identity, delay time.Duration) *Scheduler {
	return NewSchedulerWithTimer(remote, state, ident, delay, stdTimer)
}

func NewSchedulerWithTimer(remote Remote, state *ledger.State, ident func() *identity.Identity, delay time.Duration, newTimer TimerFactory) *Scheduler {
	return &Scheduler{
		remote:   remote,
		state:    state,
		ident:    ident,
		delay:    delay,
		newTimer: newTimer,
	}
}

// Schedule arms the debounce timer. A no-op while signed out.
func (s *Scheduler) Schedule() {
	if s.ident() == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
	}

	s.gen++
	gen := s.gen
	s.pending = s.newTimer(s.delay, func() { s.fire(gen) })
}

// Cancel stops any pending timer without pushing.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// fire runs as the timer callback. The generation check keeps a stale
// callback, racing a Schedule that already re-armed, from dropping the new
// timer's handle; Cancel must still be able to stop it.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen == s.gen {
		s.pending = nil
	}
	s.mu.Unlock()

	// Identity is re-checked at fire time, not arm time: a timer armed
	// before logout that fires after must no-op.
	ident := s.ident()
	if ident == nil {
		return
	}

	doc := s.state.Snapshot()
	if err := s.remote.WriteMerge(context.Background(), ident.UID, doc); err != nil {
		// Never retried and never surfaced; the next mutation re-arms.
		slog.Warn("cloud sync failed", "uid", ident.UID, "error", err)
	}
}
