package cloudsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/moumensalem/masroof/internal/identity"
	"github.com/moumensalem/masroof/internal/ledger"
	"github.com/moumensalem/masroof/internal/ledger/store"
)

// Session tracks the signed-out/signed-in state machine and runs the
// one-time pull on every transition into signed-in.
type Session struct {
	state    *ledger.State
	local    *store.Store
	remote   Remote
	provider identity.Provider

	mu      sync.Mutex
	current *identity.Identity
}

func NewSession(state *ledger.State, local *store.Store, remote Remote, provider identity.Provider) *Session {
	s := &Session{
		state:    state,
		local:    local,
		remote:   remote,
		provider: provider,
	}
	provider.OnChange(s.handleChange)

	return s
}

// Current returns the signed-in identity, or nil. The scheduler and the
// history gate key off this.
func (s *Session) Current() *identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

func (s *Session) handleChange(ident *identity.Identity) {
	s.mu.Lock()
	s.current = ident
	s.mu.Unlock()

	if ident != nil {
		s.pull(context.Background(), ident)
	}
}

// pull fetches the remote document for the identity. Present and valid: the
// cloud copy replaces local state wholesale (last-writer-wins at document
// granularity, no field-level merge) and is persisted. Absent: the local
// document seeds the remote store with a single merge-write. Any failure is
// non-fatal; the process continues on whatever local document it has.
func (s *Session) pull(ctx context.Context, ident *identity.Identity) {
	doc, err := s.remote.Read(ctx, ident.UID)
	if err != nil {
		slog.Warn("pull from cloud failed", "uid", ident.UID, "error", err)
		return
	}

	if doc == nil {
		// First login on this account: upload the local ledger.
		if err := s.remote.WriteMerge(ctx, ident.UID, s.state.Snapshot()); err != nil {
			slog.Warn("seeding cloud document failed", "uid", ident.UID, "error", err)
		}

		return
	}

	if err := s.state.Replace(doc); err != nil {
		slog.Warn("ignoring malformed cloud document", "uid", ident.UID, "error", err)
		return
	}

	if err := s.local.Save(s.state.Snapshot()); err != nil {
		slog.Warn("persisting pulled document failed", "error", err)
	}
}
