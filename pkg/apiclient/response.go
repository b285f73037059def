package apiclient

import "encoding/json"

// ErrorType tells who is responsible for a failed request.
type ErrorType string

const (
	// ErrorTypeClient means the request itself was rejected (bad input, missing authorization).
	ErrorTypeClient ErrorType = "CLIENT"
	// ErrorTypeService is a business rule rejection the caller is expected to branch on.
	ErrorTypeService ErrorType = "SERVICE"
	// ErrorTypeUnknown covers unexpected failures of unknown source.
	ErrorTypeUnknown ErrorType = "UNKNOWN"
)

// Error codes shared by every endpoint. Endpoint specific SERVICE codes are
// declared next to their callers.
const (
	// CodeAborted is produced locally when a request is cancelled by a navigation.
	CodeAborted          = "_ABORTED"
	CodeServerException  = "SERVER_EXCEPTION"
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeAccessDenied     = "ACCESS_DENIED"
)

// APIError is the error envelope returned by the API for 4xx responses.
type APIError struct {
	Type     ErrorType      `json:"type"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MetaBool reports whether the metadata entry key is a true boolean.
func (e APIError) MetaBool(key string) bool {
	v, _ := e.Metadata[key].(bool)
	return v
}

// MetaString returns the metadata entry key when it is a string.
func (e APIError) MetaString(key string) string {
	v, _ := e.Metadata[key].(string)
	return v
}

// Response is the result of a request that reached the API: either a decoded
// result or a SERVICE error (or the local _ABORTED error).
type Response[T any] struct {
	Success bool
	Result  T
	Error   *APIError
}

func succeeded[T any](result T) Response[T] {
	return Response[T]{Success: true, Result: result}
}

func failed[T any](apiErr APIError) Response[T] {
	return Response[T]{Error: &apiErr}
}

func aborted[T any]() Response[T] {
	return failed[T](APIError{
		Type:    ErrorTypeClient,
		Code:    CodeAborted,
		Message: "Request was aborted by the client",
	})
}

// ParseAPIError validates an error payload before it is trusted.
// The payload must be a JSON object carrying string "code" and "message"
// fields; "type" defaults to UNKNOWN and "metadata" must be an object if set.
func ParseAPIError(data []byte) (APIError, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return APIError{}, newException(ErrInvalidJSON, "Unsupported server response: invalid json", nil, err)
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return APIError{}, newException(ErrUnsupportedResponse, "Unsupported server response: error is not an object", nil, nil)
	}

	code, codeOK := fields["code"].(string)
	message, messageOK := fields["message"].(string)
	if !codeOK || !messageOK {
		return APIError{}, newException(ErrUnsupportedResponse, "Unsupported server response: incomplete error fields", nil, nil)
	}

	apiErr := APIError{
		Type:    ErrorTypeUnknown,
		Code:    code,
		Message: message,
	}

	switch t := fields["type"].(type) {
	case nil:
	case string:
		apiErr.Type = ErrorType(t)
	default:
		return APIError{}, newException(ErrUnsupportedResponse, "Unsupported server response: invalid error type", nil, nil)
	}

	switch m := fields["metadata"].(type) {
	case nil:
	case map[string]any:
		apiErr.Metadata = m
	default:
		return APIError{}, newException(ErrUnsupportedResponse, "Unsupported server response: invalid error metadata", nil, nil)
	}

	return apiErr, nil
}

// IsAborted reports whether res carries the local _ABORTED error.
func IsAborted[T any](res Response[T]) bool {
	return !res.Success && res.Error != nil && res.Error.Code == CodeAborted
}
