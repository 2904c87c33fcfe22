package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moumensalem/masroof/internal/ledger"
	"github.com/moumensalem/masroof/internal/ledger/store"
)

func TestStore_RoundTrip(t *testing.T) {
	s := store.New(t.TempDir())

	doc := ledger.DefaultDocument()
	doc.Transactions = append(doc.Transactions, ledger.Transaction{
		ID: 1, Kind: ledger.KindIncome, Amount: 10000, Date: "2024-01-01", Wallet: "بنك",
	})

	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc, got)
}

func TestStore_LoadAbsent(t *testing.T) {
	s := store.New(t.TempDir())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "NotJSON", payload: "{not json"},
		{name: "MissingConfig", payload: `{"trans":[]}`},
		{name: "MissingTransactions", payload: `{"config":{"cats":{"exp":[],"inc":[]},"wallets":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "masroof_ledger_v1.json"), []byte(tt.payload), 0o644))

			got, err := store.New(dir).Load()
			require.NoError(t, err, "corrupt payloads are treated as absent, never fatal")
			assert.Nil(t, got)
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := store.New(t.TempDir())

	first := ledger.DefaultDocument()
	first.Transactions = append(first.Transactions, ledger.Transaction{ID: 1, Kind: ledger.KindExpense, Amount: 50, Date: "2024-01-01", Wallet: "كاش"})
	require.NoError(t, s.Save(first))

	second := ledger.DefaultDocument()
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Transactions, "save replaces the whole value")
}

func TestStore_Clear(t *testing.T) {
	s := store.New(t.TempDir())

	require.NoError(t, s.Clear(), "clearing an absent store is fine")

	require.NoError(t, s.Save(ledger.DefaultDocument()))
	require.NoError(t, s.Clear())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}
