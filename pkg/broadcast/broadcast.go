package broadcast

import (
	"context"
	"errors"
)

// ErrClosed is returned when broadcasting on a closed broadcaster.
var ErrClosed = errors.New("broadcast: broadcaster is closed")

// Message wraps data of type T. Sender identifies the publisher so that
// subscribers can ignore their own messages.
type Message[T any] struct {
	Sender string
	Data   T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel messages are delivered on, in broadcast order.
	// The channel is closed once the subscriber is closed.
	Receive(ctx context.Context) <-chan Message[T]

	// Close releases the subscriber. It is idempotent.
	Close() error
}

// Broadcaster sends messages to multiple subscribers.
type Broadcaster[T any] interface {
	// Subscribe creates a subscriber that lives until ctx is done or it is closed.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast queues msg for every active subscriber.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes all subscribers.
	Close() error
}
