package ledger

import "errors"

var (
	// ErrInvalidAmount rejects a mutation whose amount is missing, zero or negative.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrBadFormat rejects a document missing its transactions or config container.
	ErrBadFormat = errors.New("invalid ledger document")

	// ErrLocked gates the history view behind authentication.
	ErrLocked = errors.New("history locked: login required")

	ErrNotFound = errors.New("transaction not found")
)

// Kind represents the kind of ledger entry. The wire values match the
// persisted document format.
type Kind string

const (
	KindIncome   Kind = "inc"
	KindExpense  Kind = "exp"
	KindTransfer Kind = "trans"
)

// TransferCategory is the fixed category assigned to transfer entries.
const TransferCategory = "تحويل"

// Transaction is a single ledger entry. Exactly one of Wallet or the
// WalletFrom/WalletTo pair is populated, determined by Kind.
type Transaction struct {
	ID         int64  `json:"id"`
	Kind       Kind   `json:"type"`
	Amount     int64  `json:"amt"` // minor units (cents)
	Date       string `json:"date"`
	Note       string `json:"note,omitempty"`
	Category   string `json:"cat,omitempty"`
	Wallet     string `json:"wallet,omitempty"`
	WalletFrom string `json:"walletFrom,omitempty"`
	WalletTo   string `json:"walletTo,omitempty"`
}

// RecurringTemplate is derived from a transaction saved with the recurring
// flag. Transfers never produce templates.
type RecurringTemplate struct {
	ID       int64  `json:"id"`
	Kind     Kind   `json:"type"`
	Amount   int64  `json:"amt"`
	Category string `json:"cat"`
	Wallet   string `json:"wallet"`
	Note     string `json:"note,omitempty"`
}

// Config holds the user-editable category and wallet lists. Append-only in
// normal operation.
type Config struct {
	Cats    Categories `json:"cats"`
	Wallets []string   `json:"wallets"`
}

type Categories struct {
	Expense []string `json:"exp"`
	Income  []string `json:"inc"`
}

// Document is the full persisted aggregate. Config is a pointer so that a
// decoded payload without a config container fails validation instead of
// silently defaulting.
type Document struct {
	Transactions []Transaction       `json:"trans"`
	Recurring    []RecurringTemplate `json:"recurring"`
	Config       *Config             `json:"config"`
}

// Validate checks that the document carries both required containers. An
// empty transaction list is valid; an absent one is not.
func (d *Document) Validate() error {
	if d == nil || d.Transactions == nil || d.Config == nil {
		return ErrBadFormat
	}

	return nil
}

// DefaultDocument returns the seeded document used on first start and after
// a reset.
func DefaultDocument() *Document {
	return &Document{
		Transactions: []Transaction{},
		Recurring:    []RecurringTemplate{},
		Config: &Config{
			Cats: Categories{
				Expense: []string{"طعام", "مواصلات", "ماركت", "فواتير", "ترفيه", "علاج", "ملابس"},
				Income:  []string{"راتب", "فري لانس", "أرباح", "أخرى"},
			},
			Wallets: []string{"كاش", "فيزا", "بنك", "فودافون"},
		},
	}
}

// clone deep-copies the document. Transactions and templates are value
// structs, so copying the slices is enough.
func (d *Document) clone() *Document {
	if d == nil {
		return nil
	}

	out := &Document{
		Transactions: append([]Transaction(nil), d.Transactions...),
		Recurring:    append([]RecurringTemplate(nil), d.Recurring...),
	}

	if d.Config != nil {
		out.Config = &Config{
			Cats: Categories{
				Expense: append([]string(nil), d.Config.Cats.Expense...),
				Income:  append([]string(nil), d.Config.Cats.Income...),
			},
			Wallets: append([]string(nil), d.Config.Wallets...),
		}
	}

	return out
}
