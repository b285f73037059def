package paymybuddy

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currencies accepted by the service.
var Currencies = []string{"AUD", "CAD", "CHF", "EUR", "GBP", "HKD", "JPY", "USD"}

// ParseCurrency validates an ISO 4217 code accepted by the service.
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil || !slices.Contains(Currencies, unit.String()) {
		return currency.Unit{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return unit, nil
}

// Decimals returns the number of minor digits of the currency.
func Decimals(unit currency.Unit) int {
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// plainDecimal accepts unsigned decimals without exponent or dangling separator.
var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// NormalizeAmount checks that amount is a strictly positive decimal with no
// more fraction digits than the currency allows. A comma decimal separator is
// accepted. Trailing fraction zeros are stripped, as the API does.
func NormalizeAmount(code, amount string) (string, error) {
	unit, err := ParseCurrency(code)
	if err != nil {
		return "", err
	}

	amount = strings.ReplaceAll(strings.TrimSpace(amount), ",", ".")
	if !plainDecimal.MatchString(amount) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !value.IsPositive() {
		return "", fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}

	scale := Decimals(unit)
	if !value.Equal(value.Truncate(int32(scale))) {
		return "", fmt.Errorf("%w: %s allows %d decimals", ErrInvalidAmount, unit, scale)
	}
	return value.String(), nil
}

// FormatAmount renders amount with the currency symbol, e.g. "€ 12.50".
func FormatAmount(code, amount string) string {
	unit, err := ParseCurrency(code)
	if err != nil {
		return amount + " " + code
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Sprintf("%v %s", currency.Symbol(unit), amount)
	}
	return fmt.Sprintf("%v %s", currency.Symbol(unit), value.StringFixed(int32(Decimals(unit))))
}
