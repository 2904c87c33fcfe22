package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/moumensalem/masroof/internal/identity"
)

// State owns the canonical ledger document. All reads and mutations go
// through it; the mutex makes the timer-fired sync path safe against the
// UI event loop.
type State struct {
	mu  sync.Mutex
	doc *Document
	now func() time.Time

	onChange []func(*Document)
}

// New creates a State owning the given document. A nil document starts from
// the seeded default.
func New(doc *Document) *State {
	return NewWithClock(doc, time.Now)
}

// NewWithClock is New with an injectable clock, used to assign entry ids.
func NewWithClock(doc *Document, now func() time.Time) *State {
	if doc == nil {
		doc = DefaultDocument()
	}

	return &State{doc: doc, now: now}
}

// OnChange registers a hook invoked with a snapshot after every successful
// user mutation. The composition root wires local persistence and the sync
// scheduler here. Replace does not fire hooks: the login-time pull persists
// explicitly and must not schedule an echoing sync.
func (s *State) OnChange(fn func(*Document)) {
	s.onChange = append(s.onChange, fn)
}

func (s *State) notify() {
	doc := s.Snapshot()
	for _, fn := range s.onChange {
		fn(doc)
	}
}

// Snapshot returns a deep copy of the current document.
func (s *State) Snapshot() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.clone()
}

// UpsertParams carries the plain data for a transaction save. ID zero means
// insert; a non-zero ID edits the matching entry in place.
type UpsertParams struct {
	ID         int64
	Kind       Kind
	Amount     int64
	Date       string
	Note       string
	Category   string
	Wallet     string
	WalletFrom string
	WalletTo   string
	Recurring  bool
}

// Upsert saves a transaction. Editing by id preserves the entry's position
// in the log; inserting appends. Inserting a non-transfer flagged recurring
// also appends a derived template. A non-positive amount rejects the whole
// operation with nothing mutated.
func (s *State) Upsert(params UpsertParams) (*Transaction, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := Transaction{
		ID:     params.ID,
		Kind:   params.Kind,
		Amount: params.Amount,
		Date:   params.Date,
		Note:   params.Note,
	}

	if params.Kind == KindTransfer {
		tx.Category = TransferCategory
		tx.WalletFrom = params.WalletFrom
		tx.WalletTo = params.WalletTo
	} else {
		tx.Category = params.Category
		tx.Wallet = params.Wallet
	}

	s.mu.Lock()

	if params.ID != 0 {
		idx := s.indexOf(params.ID)
		if idx == -1 {
			s.mu.Unlock()
			return nil, ErrNotFound
		}

		s.doc.Transactions[idx] = tx
	} else {
		tx.ID = s.nextID()
		s.doc.Transactions = append(s.doc.Transactions, tx)

		if params.Recurring && params.Kind != KindTransfer {
			s.doc.Recurring = append(s.doc.Recurring, RecurringTemplate{
				ID:       tx.ID,
				Kind:     tx.Kind,
				Amount:   tx.Amount,
				Category: tx.Category,
				Wallet:   tx.Wallet,
				Note:     tx.Note,
			})
		}
	}

	s.mu.Unlock()
	s.notify()

	return &tx, nil
}

// nextID is the creation time in epoch millis, bumped past every existing id
// so that bursts landing inside one millisecond (bulk import, applying a
// template right after its source entry) still get unique ids. Callers hold
// the mutex.
func (s *State) nextID() int64 {
	id := s.now().UnixMilli()

	for _, t := range s.doc.Transactions {
		if t.ID >= id {
			id = t.ID + 1
		}
	}

	return id
}

func (s *State) indexOf(id int64) int {
	for i, t := range s.doc.Transactions {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// Get returns the transaction with the given id.
func (s *State) Get(id int64) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return nil, ErrNotFound
	}

	tx := s.doc.Transactions[idx]

	return &tx, nil
}

// Replace swaps in a whole new document, used by restore-from-backup and the
// login-time pull. A document missing its transactions or config container
// is rejected and the current state stays untouched.
func (s *State) Replace(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc.clone()
	s.mu.Unlock()

	return nil
}

// Totals is the derived balance view. It is recomputed from the transaction
// log on every call; no running totals are kept anywhere.
type Totals struct {
	Net     int64
	Income  int64
	Expense int64
	Wallets map[string]int64
}

// ComputeTotals folds once over the log. Income adds to its wallet and the
// net; expense subtracts from both; a transfer moves between wallets and is
// net-neutral.
func (s *State) ComputeTotals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := Totals{Wallets: map[string]int64{}}

	if s.doc.Config != nil {
		for _, w := range s.doc.Config.Wallets {
			totals.Wallets[w] = 0
		}
	}

	for _, t := range s.doc.Transactions {
		switch t.Kind {
		case KindIncome:
			totals.Net += t.Amount
			totals.Income += t.Amount
			totals.Wallets[t.Wallet] += t.Amount
		case KindExpense:
			totals.Net -= t.Amount
			totals.Expense += t.Amount
			totals.Wallets[t.Wallet] -= t.Amount
		case KindTransfer:
			totals.Wallets[t.WalletFrom] -= t.Amount
			totals.Wallets[t.WalletTo] += t.Amount
		}
	}

	return totals
}

// DayGroup is one history bucket: all entries sharing an exact date string,
// in reverse insertion order.
type DayGroup struct {
	Date         string
	Transactions []Transaction
}

// History returns the transaction log grouped by date, most recent calendar
// date first. An empty filter keeps every kind. Without an identity the view
// is locked: this is a deliberate access policy, history is gated behind
// login.
func (s *State) History(filter Kind, ident *identity.Identity) ([]DayGroup, error) {
	if ident == nil {
		return nil, ErrLocked
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grouped := map[string][]Transaction{}

	var order []string

	for i := len(s.doc.Transactions) - 1; i >= 0; i-- {
		t := s.doc.Transactions[i]
		if filter != "" && t.Kind != filter {
			continue
		}

		if _, ok := grouped[t.Date]; !ok {
			order = append(order, t.Date)
		}

		grouped[t.Date] = append(grouped[t.Date], t)
	}

	// Descending by calendar date, not by string. The permissive layout
	// tolerates single-digit months and days in restored backups.
	const readDateFormat = "2006-1-2"

	sort.SliceStable(order, func(i, j int) bool {
		di, _ := time.Parse(readDateFormat, order[i])
		dj, _ := time.Parse(readDateFormat, order[j])

		return di.After(dj)
	})

	groups := make([]DayGroup, 0, len(order))
	for _, date := range order {
		groups = append(groups, DayGroup{Date: date, Transactions: grouped[date]})
	}

	return groups, nil
}

// Recent returns the n most recently entered transactions, newest first.
func (s *State) Recent(n int) []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := s.doc.Transactions

	out := make([]Transaction, 0, n)
	for i := len(txs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, txs[i])
	}

	return out
}

// Config returns a copy of the current category/wallet configuration.
func (s *State) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Config == nil {
		return Config{}
	}

	return Config{
		Cats: Categories{
			Expense: append([]string(nil), s.doc.Config.Cats.Expense...),
			Income:  append([]string(nil), s.doc.Config.Cats.Income...),
		},
		Wallets: append([]string(nil), s.doc.Config.Wallets...),
	}
}

// AddExpenseCategory appends a custom category to the expense list.
func (s *State) AddExpenseCategory(name string) {
	s.mu.Lock()
	s.doc.Config.Cats.Expense = append(s.doc.Config.Cats.Expense, name)
	s.mu.Unlock()
	s.notify()
}

// AddWallet appends a custom wallet.
func (s *State) AddWallet(name string) {
	s.mu.Lock()
	s.doc.Config.Wallets = append(s.doc.Config.Wallets, name)
	s.mu.Unlock()
	s.notify()
}

// Templates returns a copy of the recurring templates.
func (s *State) Templates() []RecurringTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecurringTemplate(nil), s.doc.Recurring...)
}

// ApplyTemplate inserts a new transaction from the recurring template with
// the given id, dated by the state's clock.
func (s *State) ApplyTemplate(id int64) (*Transaction, error) {
	s.mu.Lock()

	var tpl *RecurringTemplate

	for i := range s.doc.Recurring {
		if s.doc.Recurring[i].ID == id {
			tpl = &s.doc.Recurring[i]
			break
		}
	}

	if tpl == nil {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	params := UpsertParams{
		Kind:     tpl.Kind,
		Amount:   tpl.Amount,
		Date:     s.now().Format(time.DateOnly),
		Note:     tpl.Note,
		Category: tpl.Category,
		Wallet:   tpl.Wallet,
	}

	s.mu.Unlock()

	return s.Upsert(params)
}

// Reset swaps back to the seeded default document. Clearing the local store
// is the caller's job.
func (s *State) Reset() {
	s.mu.Lock()
	s.doc = DefaultDocument()
	s.mu.Unlock()
}
