package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrNoTokenSource       = errors.New("apiclient: no token source available, pass one with WithTokenSource")
	ErrTransport           = errors.New("apiclient: transport failure")
	ErrServerException     = errors.New("apiclient: server exception")
	ErrClientException     = errors.New("apiclient: client exception")
	ErrUnsupportedResponse = errors.New("apiclient: unsupported server response")
	ErrInvalidJSON         = errors.New("apiclient: invalid json")
	ErrReloadRequired      = errors.New("apiclient: session invalidated, reload required")
	ErrAccessDenied        = errors.New("apiclient: access denied")
	ErrUnhandled           = errors.New("apiclient: unhandled service error")
)

// Exception is the base error of the client. Kind is one of the package
// sentinels and can be matched with errors.Is.
type Exception struct {
	Message  string
	APIError *APIError
	Cause    error
	kind     error
}

func newException(kind error, message string, apiErr *APIError, cause error) *Exception {
	return &Exception{
		Message:  message,
		APIError: apiErr,
		Cause:    cause,
		kind:     kind,
	}
}

func (e *Exception) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Exception) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Code returns the API error code carried by the exception, if any.
func (e *Exception) Code() string {
	if e.APIError == nil {
		return ""
	}
	return e.APIError.Code
}

// AccessDeniedError is returned for CLIENT errors with code ACCESS_DENIED.
type AccessDeniedError struct {
	Exception
}

func newAccessDenied(apiErr APIError) *AccessDeniedError {
	return &AccessDeniedError{
		Exception: *newException(ErrAccessDenied, "Access denied (authentication required/missing authorization)", &apiErr, nil),
	}
}

func (e *AccessDeniedError) Unwrap() error {
	return &e.Exception
}

// InvalidToken distinguishes an expired or unknown token from a plain
// authorization failure.
func (e *AccessDeniedError) InvalidToken() bool {
	return e.APIError != nil && e.APIError.MetaBool("invalidToken")
}

// UnhandledAPIError escalates a SERVICE error whose code the caller did not
// anticipate.
type UnhandledAPIError struct {
	Exception
}

func (e *UnhandledAPIError) Unwrap() error {
	return &e.Exception
}

// Unhandled wraps apiErr into an *UnhandledAPIError. Callers branch on every
// code they expect and return Unhandled for the rest.
func Unhandled(apiErr *APIError) error {
	var copied APIError
	if apiErr != nil {
		copied = *apiErr
	}
	return &UnhandledAPIError{
		Exception: *newException(ErrUnhandled, fmt.Sprintf("Unhandled service error (%s)", copied.Code), &copied, nil),
	}
}

// IsInvalidToken reports whether err is an access denied error caused by an
// invalid token.
func IsInvalidToken(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied) && denied.InvalidToken()
}
