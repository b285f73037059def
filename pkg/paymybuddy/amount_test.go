package paymybuddy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

func TestNormalizeAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		currency string
		amount   string
		want     string
		err      error
	}{
		{"integer", "EUR", "12", "12", nil},
		{"comma separator", "EUR", "12,5", "12.5", nil},
		{"trailing zeros", "USD", "12.50", "12.5", nil},
		{"leading zeros", "EUR", "007.01", "7.01", nil},
		{"too many decimals", "EUR", "1.001", "", paymybuddy.ErrInvalidAmount},
		{"no decimals for yen", "JPY", "1.5", "", paymybuddy.ErrInvalidAmount},
		{"yen integer", "jpy", "150", "150", nil},
		{"beyond float precision", "EUR", "12345678901234567890.10", "12345678901234567890.1", nil},
		{"signed", "EUR", "+1", "", paymybuddy.ErrInvalidAmount},
		{"zero", "EUR", "0.00", "", paymybuddy.ErrInvalidAmount},
		{"negative", "EUR", "-1", "", paymybuddy.ErrInvalidAmount},
		{"garbage", "EUR", "1e3", "", paymybuddy.ErrInvalidAmount},
		{"dangling separator", "EUR", "1.", "", paymybuddy.ErrInvalidAmount},
		{"unknown currency", "BTC", "1", "", paymybuddy.ErrUnsupportedCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := paymybuddy.NormalizeAmount(tt.currency, tt.amount)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Contains(t, paymybuddy.FormatAmount("EUR", "12.5"), "12.50")
	assert.Contains(t, paymybuddy.FormatAmount("USD", "7"), "7.00")
	assert.Contains(t, paymybuddy.FormatAmount("EUR", "12345678901234567890.1"), "12345678901234567890.10")
	assert.Contains(t, paymybuddy.FormatAmount("JPY", "150"), "150")
	assert.NotContains(t, paymybuddy.FormatAmount("JPY", "150"), ".")
	assert.Equal(t, "3 XYZ", paymybuddy.FormatAmount("XYZ", "3"))
}
