package ledger_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moumensalem/masroof/internal/identity"
	"github.com/moumensalem/masroof/internal/ledger"
)

func testClock() func() time.Time {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0

	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestState_Upsert_Insert(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())

	tx, err := state.Upsert(ledger.UpsertParams{
		Kind:     ledger.KindExpense,
		Amount:   1250,
		Date:     "2024-03-01",
		Category: "طعام",
		Wallet:   "كاش",
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, "كاش", tx.Wallet)
	assert.Empty(t, tx.WalletFrom)

	doc := state.Snapshot()
	require.Len(t, doc.Transactions, 1)
	assert.Empty(t, doc.Recurring)
}

func TestState_Upsert_RejectsBadAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
	}{
		{name: "Zero", amount: 0},
		{name: "Negative", amount: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ledger.New(nil)
			before, _ := json.Marshal(state.Snapshot())

			_, err := state.Upsert(ledger.UpsertParams{
				Kind:   ledger.KindExpense,
				Amount: tt.amount,
				Wallet: "كاش",
			})
			assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

			after, _ := json.Marshal(state.Snapshot())
			assert.Equal(t, before, after, "rejected upsert must not mutate state")
		})
	}
}

func TestState_Upsert_UniqueIDsWithinSameMillisecond(t *testing.T) {
	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state := ledger.NewWithClock(nil, func() time.Time { return frozen })

	var ids []int64

	for i := range 3 {
		tx, err := state.Upsert(ledger.UpsertParams{
			Kind: ledger.KindExpense, Amount: int64(100 + i), Date: "2024-03-01",
			Category: "طعام", Wallet: "كاش",
		})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	base := frozen.UnixMilli()
	assert.Equal(t, []int64{base, base + 1, base + 2}, ids)

	// With unique ids, editing the middle entry touches exactly that row.
	_, err := state.Upsert(ledger.UpsertParams{
		ID: ids[1], Kind: ledger.KindExpense, Amount: 999, Date: "2024-03-01",
		Category: "ماركت", Wallet: "كاش",
	})
	require.NoError(t, err)

	doc := state.Snapshot()
	require.Len(t, doc.Transactions, 3)
	assert.Equal(t, int64(100), doc.Transactions[0].Amount)
	assert.Equal(t, int64(999), doc.Transactions[1].Amount)
	assert.Equal(t, int64(102), doc.Transactions[2].Amount)
}

func TestState_Upsert_EditPreservesPosition(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())

	first, err := state.Upsert(ledger.UpsertParams{Kind: ledger.KindIncome, Amount: 100, Date: "2024-03-01", Wallet: "بنك"})
	require.NoError(t, err)

	_, err = state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 40, Date: "2024-03-01", Wallet: "كاش"})
	require.NoError(t, err)

	edited, err := state.Upsert(ledger.UpsertParams{ID: first.ID, Kind: ledger.KindIncome, Amount: 300, Date: "2024-03-02", Wallet: "بنك"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, edited.ID)

	doc := state.Snapshot()
	require.Len(t, doc.Transactions, 2, "edit must not change the log length")
	assert.Equal(t, first.ID, doc.Transactions[0].ID, "edit must keep the entry's position")
	assert.Equal(t, int64(300), doc.Transactions[0].Amount)
}

func TestState_Upsert_UnknownID(t *testing.T) {
	state := ledger.New(nil)

	_, err := state.Upsert(ledger.UpsertParams{ID: 42, Kind: ledger.KindExpense, Amount: 10, Wallet: "كاش"})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestState_Upsert_Recurring(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())

	// Recurring insert creates a template.
	tx, err := state.Upsert(ledger.UpsertParams{
		Kind: ledger.KindExpense, Amount: 500, Date: "2024-03-01",
		Category: "فواتير", Wallet: "بنك", Recurring: true,
	})
	require.NoError(t, err)

	templates := state.Templates()
	require.Len(t, templates, 1)
	assert.Equal(t, "فواتير", templates[0].Category)

	// Editing the same entry with the flag set must not add another.
	_, err = state.Upsert(ledger.UpsertParams{
		ID: tx.ID, Kind: ledger.KindExpense, Amount: 600, Date: "2024-03-01",
		Category: "فواتير", Wallet: "بنك", Recurring: true,
	})
	require.NoError(t, err)
	assert.Len(t, state.Templates(), 1)

	// Transfers never produce templates.
	_, err = state.Upsert(ledger.UpsertParams{
		Kind: ledger.KindTransfer, Amount: 100, Date: "2024-03-01",
		WalletFrom: "كاش", WalletTo: "بنك", Recurring: true,
	})
	require.NoError(t, err)
	assert.Len(t, state.Templates(), 1)
}

func TestState_Upsert_TransferShape(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())

	tx, err := state.Upsert(ledger.UpsertParams{
		Kind: ledger.KindTransfer, Amount: 2000, Date: "2024-03-01",
		WalletFrom: "كاش", WalletTo: "بنك",
		Category: "ignored", Wallet: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.TransferCategory, tx.Category)
	assert.Empty(t, tx.Wallet)
	assert.Equal(t, "كاش", tx.WalletFrom)
	assert.Equal(t, "بنك", tx.WalletTo)
}

func TestState_ComputeTotals(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())

	mustUpsert := func(p ledger.UpsertParams) {
		t.Helper()
		_, err := state.Upsert(p)
		require.NoError(t, err)
	}

	mustUpsert(ledger.UpsertParams{Kind: ledger.KindIncome, Amount: 100, Date: "2024-01-01", Wallet: "بنك"})
	mustUpsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 40, Date: "2024-01-01", Wallet: "بنك"})
	mustUpsert(ledger.UpsertParams{Kind: ledger.KindTransfer, Amount: 20, Date: "2024-01-02", WalletFrom: "كاش", WalletTo: "بنك"})

	totals := state.ComputeTotals()
	assert.Equal(t, int64(60), totals.Net)
	assert.Equal(t, int64(100), totals.Income)
	assert.Equal(t, int64(40), totals.Expense)
	assert.Equal(t, int64(-20), totals.Wallets["كاش"])
	assert.Equal(t, int64(80), totals.Wallets["بنك"], "income - expense + transfer in")

	// Seeded wallets always appear, even with no movement.
	assert.Contains(t, totals.Wallets, "فيزا")
	assert.Equal(t, int64(0), totals.Wallets["فيزا"])
}

func TestState_ComputeTotals_OrderIndependent(t *testing.T) {
	params := []ledger.UpsertParams{
		{Kind: ledger.KindIncome, Amount: 900, Date: "2024-01-01", Wallet: "كاش"},
		{Kind: ledger.KindExpense, Amount: 250, Date: "2024-01-01", Wallet: "كاش"},
		{Kind: ledger.KindTransfer, Amount: 100, Date: "2024-01-01", WalletFrom: "كاش", WalletTo: "بنك"},
		{Kind: ledger.KindExpense, Amount: 50, Date: "2024-01-01", Wallet: "بنك"},
	}

	forward := ledger.NewWithClock(nil, testClock())
	for _, p := range params {
		_, err := forward.Upsert(p)
		require.NoError(t, err)
	}

	backward := ledger.NewWithClock(nil, testClock())
	for i := len(params) - 1; i >= 0; i-- {
		_, err := backward.Upsert(params[i])
		require.NoError(t, err)
	}

	assert.Equal(t, forward.ComputeTotals(), backward.ComputeTotals())
}

func TestState_Replace(t *testing.T) {
	tests := []struct {
		name    string
		doc     *ledger.Document
		wantErr bool
	}{
		{
			name: "Valid",
			doc: &ledger.Document{
				Transactions: []ledger.Transaction{{ID: 1, Kind: ledger.KindIncome, Amount: 100, Date: "2024-01-01", Wallet: "بنك"}},
				Config:       ledger.DefaultDocument().Config,
			},
		},
		{
			name:    "MissingTransactions",
			doc:     &ledger.Document{Config: ledger.DefaultDocument().Config},
			wantErr: true,
		},
		{
			name:    "MissingConfig",
			doc:     &ledger.Document{Transactions: []ledger.Transaction{}},
			wantErr: true,
		},
		{
			name:    "Nil",
			doc:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ledger.NewWithClock(nil, testClock())
			_, err := state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 10, Date: "2024-02-01", Wallet: "كاش"})
			require.NoError(t, err)

			before, _ := json.Marshal(state.Snapshot())

			err = state.Replace(tt.doc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrBadFormat)

				after, _ := json.Marshal(state.Snapshot())
				assert.Equal(t, before, after, "rejected replace must leave state untouched")

				return
			}

			require.NoError(t, err)
			got, _ := json.Marshal(state.Snapshot())
			want, _ := json.Marshal(tt.doc)
			assert.Equal(t, want, got)
		})
	}
}

func TestState_History_LockedWithoutIdentity(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())
	_, err := state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 10, Date: "2024-02-01", Wallet: "كاش"})
	require.NoError(t, err)

	for _, filter := range []ledger.Kind{"", ledger.KindIncome, ledger.KindExpense, ledger.KindTransfer} {
		_, err := state.History(filter, nil)
		assert.ErrorIs(t, err, ledger.ErrLocked)
	}
}

func TestState_History(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())
	ident := &identity.Identity{UID: "u1", Email: "m@example.com"}

	mustUpsert := func(p ledger.UpsertParams) int64 {
		t.Helper()

		tx, err := state.Upsert(p)
		require.NoError(t, err)

		return tx.ID
	}

	// Entry order deliberately not date order.
	id1 := mustUpsert(ledger.UpsertParams{Kind: ledger.KindIncome, Amount: 100, Date: "2024-02-10", Wallet: "بنك"})
	id2 := mustUpsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 40, Date: "2024-02-09", Wallet: "كاش"})
	id3 := mustUpsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 30, Date: "2024-02-10", Wallet: "كاش"})

	groups, err := state.History("", ident)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-02-10", groups[0].Date)
	assert.Equal(t, "2024-02-09", groups[1].Date)

	// Within a group: reverse insertion order.
	require.Len(t, groups[0].Transactions, 2)
	assert.Equal(t, id3, groups[0].Transactions[0].ID)
	assert.Equal(t, id1, groups[0].Transactions[1].ID)

	require.Len(t, groups[1].Transactions, 1)
	assert.Equal(t, id2, groups[1].Transactions[0].ID)

	filtered, err := state.History(ledger.KindExpense, ident)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Len(t, filtered[0].Transactions, 1)
	assert.Equal(t, id3, filtered[0].Transactions[0].ID)
}

func TestState_History_CalendarOrderNotStringOrder(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())
	ident := &identity.Identity{UID: "u1"}

	// Unpadded dates sort wrongly as strings: "2024-2-10" > "2024-10-01".
	dates := []string{"2024-2-10", "2024-10-01", "2023-12-31"}
	for _, d := range dates {
		_, err := state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 10, Date: d, Wallet: "كاش"})
		require.NoError(t, err)
	}

	groups, err := state.History("", ident)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "2024-10-01", groups[0].Date)
	assert.Equal(t, "2024-2-10", groups[1].Date)
	assert.Equal(t, "2023-12-31", groups[2].Date)
}

func TestState_OnChange(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())

	var calls int

	var lastLen int

	state.OnChange(func(doc *ledger.Document) {
		calls++
		lastLen = len(doc.Transactions)
	})

	_, err := state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 10, Date: "2024-02-01", Wallet: "كاش"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, lastLen)

	// Rejected mutations never notify.
	_, err = state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 0})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	// Replace never notifies: the pull path persists explicitly.
	require.NoError(t, state.Replace(ledger.DefaultDocument()))
	assert.Equal(t, 1, calls)

	state.AddWallet("انستاباي")
	assert.Equal(t, 2, calls)

	state.AddExpenseCategory("تعليم")
	assert.Equal(t, 3, calls)
}

func TestState_ApplyTemplate(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	state := ledger.NewWithClock(nil, func() time.Time { return now })

	_, err := state.Upsert(ledger.UpsertParams{
		Kind: ledger.KindExpense, Amount: 750, Date: "2024-02-01",
		Category: "فواتير", Wallet: "بنك", Note: "كهرباء", Recurring: true,
	})
	require.NoError(t, err)

	templates := state.Templates()
	require.Len(t, templates, 1)

	tx, err := state.ApplyTemplate(templates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", tx.Date)
	assert.Equal(t, int64(750), tx.Amount)
	assert.Equal(t, "كهرباء", tx.Note)
	assert.NotEqual(t, templates[0].ID, tx.ID, "the clock is frozen, so the new entry must get a bumped id")
	assert.Len(t, state.Snapshot().Transactions, 2)

	_, err = state.ApplyTemplate(999)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestState_Reset(t *testing.T) {
	state := ledger.NewWithClock(nil, testClock())
	_, err := state.Upsert(ledger.UpsertParams{Kind: ledger.KindExpense, Amount: 10, Date: "2024-02-01", Wallet: "كاش"})
	require.NoError(t, err)

	state.Reset()

	got, _ := json.Marshal(state.Snapshot())
	want, _ := json.Marshal(ledger.DefaultDocument())
	assert.Equal(t, want, got)
}
