package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster delivers every message to every subscriber without
// blocking the publisher. All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	closed      bool
	mu          sync.Mutex
	wg          sync.WaitGroup
}

// NewMemoryBroadcaster creates a new in-memory broadcaster.
func NewMemoryBroadcaster[T any]() *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
	}
}

// Subscribe creates a new subscriber, removed when ctx is done.
// If the broadcaster is already closed, returns a closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscriber[T]()
	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
		case <-sub.done:
		}
		b.unsubscribe(sub)
	}()

	return sub
}

// Broadcast queues msg for all active subscribers. Every subscriber sees
// messages in the same order.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	for sub := range b.subscribers {
		sub.send(msg)
	}
	return nil
}

// Close shuts down the broadcaster and closes all subscribers.
// It is safe to call Close multiple times.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

// Subscribers returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
	_ = sub.Close()
}

type subscriber[T any] struct {
	mu     sync.Mutex
	queue  []Message[T]
	notify chan struct{}
	out    chan Message[T]
	done   chan struct{}
	once   sync.Once
}

func newSubscriber[T any]() *subscriber[T] {
	s := &subscriber[T]{
		notify: make(chan struct{}, 1),
		out:    make(chan Message[T]),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.out
}

func (s *subscriber[T]) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *subscriber[T]) send(msg Message[T]) {
	s.mu.Lock()
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// pump drains the queue into the receive channel until the subscriber is closed.
func (s *subscriber[T]) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		msg := s.queue[0]
		s.queue[0] = Message[T]{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- msg:
		case <-s.done:
			return
		}
	}
}
