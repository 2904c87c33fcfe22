package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered decimal amount string into cents.
// Format examples: "12.34" -> 1234, "100" -> 10000.
// A non-numeric, zero or negative input is rejected with ErrInvalidAmount.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return cents, nil
}

// FormatAmount formats an amount stored as cents into a plain decimal string.
func FormatAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
