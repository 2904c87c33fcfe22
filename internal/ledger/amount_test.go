package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moumensalem/masroof/internal/ledger"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "Decimal", input: "12.34", want: 1234},
		{name: "Whole", input: "100", want: 10000},
		{name: "Padded", input: " 10 ", want: 1000},
		{name: "RoundsToZero", input: "0.004", wantErr: true},
		{name: "Zero", input: "0", wantErr: true},
		{name: "Negative", input: "-5", wantErr: true},
		{name: "NotANumber", input: "abc", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseAmount(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.34", ledger.FormatAmount(1234))
	assert.Equal(t, "0.05", ledger.FormatAmount(5))
	assert.Equal(t, "-3.00", ledger.FormatAmount(-300))
}
