package view

import (
	"time"

	"github.com/moumensalem/masroof/internal/ledger"
)

// readDateFormat tolerates single-digit months and days in entries that came
// in through a restored backup.
const readDateFormat = "2006-1-2"

// FormatAmount formats an amount stored as cents into a human-readable string.
func FormatAmount(cents int64) string {
	return ledger.FormatAmount(cents)
}

// SignedAmount prefixes the amount with the direction of the entry.
func SignedAmount(t ledger.Transaction) string {
	switch t.Kind {
	case ledger.KindIncome:
		return "+" + FormatAmount(t.Amount)
	case ledger.KindExpense:
		return "-" + FormatAmount(t.Amount)
	}

	return FormatAmount(t.Amount)
}

func KindLabel(k ledger.Kind) string {
	switch k {
	case ledger.KindIncome:
		return "Income"
	case ledger.KindExpense:
		return "Expense"
	case ledger.KindTransfer:
		return "Transfer"
	}

	return string(k)
}

// DayLabel renders a ledger date, substituting Today and Yesterday for the
// two most recent days.
func DayLabel(date string, now time.Time) string {
	d, err := time.Parse(readDateFormat, date)
	if err != nil {
		return date
	}

	switch d.Format(time.DateOnly) {
	case now.Format(time.DateOnly):
		return "Today"
	case now.AddDate(0, 0, -1).Format(time.DateOnly):
		return "Yesterday"
	}

	return date
}
