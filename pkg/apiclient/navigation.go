package apiclient

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNavigated is the cancellation cause of requests aborted by a navigation.
	ErrNavigated = errors.New("apiclient: navigation started")
	// ErrNavigationClosed is the cancellation cause once the navigation is closed.
	ErrNavigationClosed = errors.New("apiclient: navigation closed")
)

// Navigation hands out the abort signal of the current navigation epoch.
// Start aborts every request attached to the current epoch and opens a new one.
// All methods are safe for concurrent use.
type Navigation struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelCauseFunc
	epoch  uint64
	closed bool
}

// NewNavigation returns a navigation with a fresh epoch.
func NewNavigation() *Navigation {
	n := &Navigation{}
	n.ctx, n.cancel = context.WithCancelCause(context.Background())
	return n
}

// Signal returns the context of the current epoch. It is cancelled with
// ErrNavigated on the next Start.
func (n *Navigation) Signal() context.Context {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ctx
}

// Epoch returns the number of navigations started so far.
func (n *Navigation) Epoch() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.epoch
}

// Start aborts in-flight requests of the current epoch and replaces the signal.
func (n *Navigation) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.cancel(ErrNavigated)
	n.ctx, n.cancel = context.WithCancelCause(context.Background())
	n.epoch++
}

// Close aborts the current epoch for good. Later signals stay cancelled.
func (n *Navigation) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	n.cancel(ErrNavigationClosed)
}
