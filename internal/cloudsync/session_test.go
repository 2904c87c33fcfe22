package cloudsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/moumensalem/masroof/internal/cloudsync"
	"github.com/moumensalem/masroof/internal/identity"
	"github.com/moumensalem/masroof/internal/ledger"
	"github.com/moumensalem/masroof/internal/ledger/store"
)

// fakeProvider drives OnChange by hand, standing in for the auth backend.
type fakeProvider struct {
	cb func(*identity.Identity)
}

func (p *fakeProvider) Register(ctx context.Context, email, password string) (*identity.Identity, error) {
	return nil, nil
}

func (p *fakeProvider) Login(ctx context.Context, email, password string) (*identity.Identity, error) {
	return nil, nil
}

func (p *fakeProvider) Logout(ctx context.Context) error {
	p.cb(nil)
	return nil
}

func (p *fakeProvider) OnChange(fn func(*identity.Identity)) { p.cb = fn }

func (p *fakeProvider) signIn(ident *identity.Identity) { p.cb(ident) }

func localWithEntry(t *testing.T) (*ledger.State, *store.Store) {
	t.Helper()

	state := ledger.New(nil)
	_, err := state.Upsert(ledger.UpsertParams{
		Kind: ledger.KindExpense, Amount: 990, Date: "2024-01-05", Wallet: "كاش", Note: "local only",
	})
	require.NoError(t, err)

	return state, store.New(t.TempDir())
}

func TestSession_SeedsRemoteWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := cloudsync.NewMockRemote(ctrl)
	state, local := localWithEntry(t)
	provider := &fakeProvider{}

	session := cloudsync.NewSession(state, local, remote, provider)

	before, _ := json.Marshal(state.Snapshot())

	var seeded *ledger.Document

	remote.EXPECT().Read(gomock.Any(), "u1").Return(nil, nil)
	remote.EXPECT().
		WriteMerge(gomock.Any(), "u1", gomock.Any()).
		DoAndReturn(func(_ any, _ string, doc *ledger.Document) error {
			seeded = doc
			return nil
		}).
		Times(1)

	provider.signIn(&identity.Identity{UID: "u1"})

	require.NotNil(t, seeded)
	got, _ := json.Marshal(seeded)
	assert.Equal(t, before, got, "the seed write carries the local document")

	after, _ := json.Marshal(state.Snapshot())
	assert.Equal(t, before, after, "local data is never overwritten by a seeding login")
	assert.NotNil(t, session.Current())
}

func TestSession_ReplacesLocalWhenRemotePresent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := cloudsync.NewMockRemote(ctrl)
	state, local := localWithEntry(t)
	provider := &fakeProvider{}

	cloudsync.NewSession(state, local, remote, provider)

	cloudDoc := ledger.DefaultDocument()
	cloudDoc.Transactions = append(cloudDoc.Transactions, ledger.Transaction{
		ID: 7, Kind: ledger.KindIncome, Amount: 500, Date: "2024-01-01", Wallet: "بنك",
	})

	remote.EXPECT().Read(gomock.Any(), "u1").Return(cloudDoc, nil)

	provider.signIn(&identity.Identity{UID: "u1"})

	// Cloud is authoritative on login: the local-only entry is gone.
	doc := state.Snapshot()
	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, int64(7), doc.Transactions[0].ID)

	// And the pulled document was persisted locally.
	stored, err := local.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, doc, stored)
}

func TestSession_IgnoresMalformedRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := cloudsync.NewMockRemote(ctrl)
	state, local := localWithEntry(t)
	provider := &fakeProvider{}

	cloudsync.NewSession(state, local, remote, provider)

	before, _ := json.Marshal(state.Snapshot())

	remote.EXPECT().Read(gomock.Any(), "u1").Return(&ledger.Document{Transactions: []ledger.Transaction{}}, nil)

	provider.signIn(&identity.Identity{UID: "u1"})

	after, _ := json.Marshal(state.Snapshot())
	assert.Equal(t, before, after)

	stored, err := local.Load()
	require.NoError(t, err)
	assert.Nil(t, stored, "nothing persisted for a rejected document")
}

func TestSession_PullFailureIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := cloudsync.NewMockRemote(ctrl)
	state, local := localWithEntry(t)
	provider := &fakeProvider{}

	session := cloudsync.NewSession(state, local, remote, provider)

	before, _ := json.Marshal(state.Snapshot())

	remote.EXPECT().Read(gomock.Any(), "u1").Return(nil, errors.New("network down"))

	provider.signIn(&identity.Identity{UID: "u1"})

	after, _ := json.Marshal(state.Snapshot())
	assert.Equal(t, before, after, "the process continues on the local document")
	assert.NotNil(t, session.Current(), "still signed in; sync retries implicitly on the next mutation")
}

func TestSession_CurrentFollowsAuthState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := cloudsync.NewMockRemote(ctrl)
	state, local := localWithEntry(t)
	provider := &fakeProvider{}

	session := cloudsync.NewSession(state, local, remote, provider)
	assert.Nil(t, session.Current())

	remote.EXPECT().Read(gomock.Any(), "u1").Return(nil, nil)
	remote.EXPECT().WriteMerge(gomock.Any(), "u1", gomock.Any()).Return(nil)

	ident := &identity.Identity{UID: "u1", Email: "m@example.com"}
	provider.signIn(ident)
	assert.Equal(t, ident, session.Current())

	require.NoError(t, provider.Logout(context.Background()))
	assert.Nil(t, session.Current())
}
