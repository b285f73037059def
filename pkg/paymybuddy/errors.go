package paymybuddy

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
)

// Service error codes the calls of this package branch on.
const (
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeInvalidName     = "INVALID_NAME"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeContactNotFound = "CONTACT_NOT_FOUND"
	CodeCannotBeHimself = "CANNOT_BE_HIMSELF"
	CodeNotEnoughFunds  = "NOT_ENOUGH_FUNDS"
)

var (
	ErrAborted             = errors.New("paymybuddy: request aborted")
	ErrContactNotFound     = errors.New("paymybuddy: contact not found")
	ErrCannotBeHimself     = errors.New("paymybuddy: cannot add yourself as a contact")
	ErrNotEnoughFunds      = errors.New("paymybuddy: not enough funds")
	ErrUnsupportedCurrency = errors.New("paymybuddy: unsupported currency")
	ErrInvalidAmount       = errors.New("paymybuddy: invalid amount")
	ErrInvalidRegistration = errors.New("paymybuddy: invalid registration")
)

// FieldError is a rejected registration field.
type FieldError struct {
	Field string
	Code  string
	// AlreadyExists is set for an email already registered.
	AlreadyExists bool
	Message       string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("paymybuddy: %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidRegistration
}

// NotEnoughFundsError tells how much is missing for a transfer.
type NotEnoughFundsError struct {
	Currency      string
	MissingAmount string
}

func (e *NotEnoughFundsError) Error() string {
	if e.MissingAmount == "" {
		return ErrNotEnoughFunds.Error()
	}
	return fmt.Sprintf("%s: missing %s %s", ErrNotEnoughFunds, e.MissingAmount, e.Currency)
}

func (e *NotEnoughFundsError) Unwrap() error {
	return ErrNotEnoughFunds
}

func registerError(apiErr *apiclient.APIError) error {
	field := ""
	switch apiErr.Code {
	case CodeInvalidEmail:
		field = "email"
	case CodeInvalidName:
		field = "name"
	case CodeInvalidPassword:
		field = "password"
	default:
		return nil
	}
	return &FieldError{
		Field:         field,
		Code:          apiErr.Code,
		AlreadyExists: apiErr.MetaBool("alreadyExists"),
		Message:       apiErr.Message,
	}
}

func contactError(apiErr *apiclient.APIError) error {
	switch apiErr.Code {
	case CodeContactNotFound:
		return ErrContactNotFound
	case CodeCannotBeHimself:
		return ErrCannotBeHimself
	}
	return nil
}

func transferError(apiErr *apiclient.APIError) error {
	switch apiErr.Code {
	case CodeNotEnoughFunds:
		return &NotEnoughFundsError{
			Currency:      apiErr.MetaString("currency"),
			MissingAmount: apiErr.MetaString("missingAmount"),
		}
	case CodeContactNotFound:
		return ErrContactNotFound
	}
	return nil
}
