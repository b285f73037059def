package httpserver

import (
	"errors"
	"fmt"
)

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
	// ErrAlreadyRunning is returned by a second Run.
	ErrAlreadyRunning = errors.New("server already running")
)

// StatusError reports a dependency answering with a server error.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpserver: %s answered HTTP %d", e.URL, e.Code)
}
