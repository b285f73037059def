package validator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/pkg/validator"
)

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule validator.Rule
		want bool
	}{
		{"required", validator.Required("name", "Ann"), true},
		{"required blank", validator.Required("name", "  "), false},
		{"max len", validator.MaxLen("name", "Zoë", 3), true},
		{"max len exceeded", validator.MaxLen("name", "Zoë!", 3), false},
		{"email", validator.ValidEmail("email", "ann@example.com"), true},
		{"email without domain label", validator.ValidEmail("email", "ann@localhost"), false},
		{"email empty label", validator.ValidEmail("email", "ann@example..com"), false},
		{"email with display name", validator.ValidEmail("email", "Ann <ann@example.com>"), false},
		{"email garbage", validator.ValidEmail("email", "nope"), false},
		{"in list", validator.InListString("currency", "EUR", []string{"EUR", "USD"}), true},
		{"not in list", validator.InListString("currency", "eur", []string{"EUR", "USD"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Check())
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	require.NoError(t, validator.Apply(
		validator.Required("name", "Ann"),
		validator.ValidEmail("email", "ann@example.com"),
	))

	err := validator.Apply(
		validator.Required("name", "").WithMessage("Enter your name"),
		validator.ValidEmail("email", "nope"),
		validator.InListString("currency", "BTC", []string{"EUR", "USD"}),
	)
	require.Error(t, err)
	assert.True(t, validator.IsValidationError(err))

	verrs := validator.ExtractValidationErrors(fmt.Errorf("register: %w", err))
	require.Len(t, verrs, 3)
	assert.Equal(t, []string{"Enter your name"}, verrs.Get("name"))
	assert.Equal(t, []string{"must be a valid email address"}, verrs.Get("email"))
	assert.Equal(t, []string{"must be one of: EUR, USD"}, verrs.Get("currency"))
	assert.False(t, verrs.Has("password"))
	assert.Contains(t, err.Error(), "name: Enter your name")

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.False(t, validator.IsValidationError(fmt.Errorf("other")))
}
