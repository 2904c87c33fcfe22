package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/moumensalem/masroof/internal/ledger"
)

// entryValues carries the bindings for the add/edit transaction form. The
// views hold it by pointer so the bindings survive bubbletea's model copies.
type entryValues struct {
	Amount    string
	Category  string
	Wallet    string
	From      string
	To        string
	Date      string
	Note      string
	Recurring bool
}

// newEntryForm builds the transaction form for the given kind. Transfers
// swap the category and wallet fields for a from/to pair. The recurring flag
// is only offered when inserting.
func newEntryForm(cfg ledger.Config, kind ledger.Kind, vals *entryValues, editing bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Key("amount").
			Title("Amount").
			Placeholder("0.00").
			Value(&vals.Amount).
			Validate(func(s string) error {
				_, err := ledger.ParseAmount(s)
				return err
			}),
	}

	switch kind {
	case ledger.KindTransfer:
		fields = append(fields,
			huh.NewSelect[string]().
				Key("from").
				Title("From Wallet").
				Options(huh.NewOptions(cfg.Wallets...)...).
				Value(&vals.From),
			huh.NewSelect[string]().
				Key("to").
				Title("To Wallet").
				Options(huh.NewOptions(cfg.Wallets...)...).
				Value(&vals.To),
		)
	default:
		categories := cfg.Cats.Expense
		if kind == ledger.KindIncome {
			categories = cfg.Cats.Income
		}

		fields = append(fields,
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(huh.NewOptions(categories...)...).
				Value(&vals.Category),
			huh.NewSelect[string]().
				Key("wallet").
				Title("Wallet").
				Options(huh.NewOptions(cfg.Wallets...)...).
				Value(&vals.Wallet),
		)
	}

	fields = append(fields,
		huh.NewInput().
			Key("date").
			Title("Date").
			Placeholder(time.DateOnly).
			Value(&vals.Date).
			Validate(func(s string) error {
				if _, err := time.Parse(readDateFormat, s); err != nil {
					return fmt.Errorf("use YYYY-MM-DD")
				}
				return nil
			}),

		huh.NewInput().
			Key("note").
			Title("Note (optional)").
			Value(&vals.Note),
	)

	if !editing && kind != ledger.KindTransfer {
		fields = append(fields,
			huh.NewConfirm().
				Key("recurring").
				Title("Save as recurring template?").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.Recurring),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
}

// params assembles the upsert parameters for the completed form. ID zero
// inserts; amount parsing is revalidated by the state.
func (v *entryValues) params(id int64, kind ledger.Kind) (ledger.UpsertParams, error) {
	amount, err := ledger.ParseAmount(v.Amount)
	if err != nil {
		return ledger.UpsertParams{}, err
	}

	return ledger.UpsertParams{
		ID:         id,
		Kind:       kind,
		Amount:     amount,
		Date:       v.Date,
		Note:       v.Note,
		Category:   v.Category,
		Wallet:     v.Wallet,
		WalletFrom: v.From,
		WalletTo:   v.To,
		Recurring:  v.Recurring,
	}, nil
}
