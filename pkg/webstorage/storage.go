package webstorage

import (
	"context"
	"errors"
)

var (
	ErrClosed        = errors.New("webstorage: storage is closed")
	ErrUnknownDriver = errors.New("webstorage: unknown storage driver")
	ErrNoBackend     = errors.New("webstorage: storage backend not provided")
	ErrWatchFailed   = errors.New("webstorage: failed to watch storage events")
	ErrWriteFailed   = errors.New("webstorage: failed to write")
	ErrReadFailed    = errors.New("webstorage: failed to read")
)

// Event reports a change made through another handle of the same area.
// NewValue is nil when the key was removed.
type Event struct {
	Key      string  `json:"key"`
	NewValue *string `json:"newValue"`
	Origin   string  `json:"origin"`
}

// Removed reports whether the event is a removal.
func (e Event) Removed() bool {
	return e.NewValue == nil
}

// Storage is one handle on a key/value area shared by several tabs.
// Every write produces an event delivered to the watchers of all the other
// handles of the area, never to the writer's own watchers.
type Storage interface {
	// Origin identifies the handle in the events it produces.
	Origin() string
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Watch streams events of other handles until ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)
	Close() error
}

func strPtr(s string) *string {
	return &s
}
