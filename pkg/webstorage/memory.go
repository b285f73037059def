package webstorage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/paymybuddy/pkg/broadcast"
)

// MemoryArea is an in-process storage area shared by the handles it opens.
type MemoryArea struct {
	mu     sync.Mutex
	values map[string]string
	events *broadcast.MemoryBroadcaster[Event]
}

// NewMemoryArea creates an empty area.
func NewMemoryArea() *MemoryArea {
	return &MemoryArea{
		values: make(map[string]string),
		events: broadcast.NewMemoryBroadcaster[Event](),
	}
}

// Open returns a new handle on the area, one per tab.
func (a *MemoryArea) Open() *Memory {
	return &Memory{area: a, origin: uuid.NewString()}
}

// Close closes the area and every watcher of its handles.
func (a *MemoryArea) Close() error {
	return a.events.Close()
}

func (a *MemoryArea) write(ctx context.Context, origin, key string, value *string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if value == nil {
		delete(a.values, key)
	} else {
		a.values[key] = *value
	}

	// Broadcast under the lock so events are observed in write order.
	if err := a.events.Broadcast(ctx, broadcast.Message[Event]{
		Sender: origin,
		Data:   Event{Key: key, NewValue: value, Origin: origin},
	}); err != nil {
		return ErrClosed
	}
	return nil
}

// Memory is a handle on a MemoryArea.
type Memory struct {
	area   *MemoryArea
	origin string

	mu     sync.Mutex
	closed bool
	cancel []context.CancelFunc
}

var _ Storage = (*Memory)(nil)

func (m *Memory) Origin() string {
	return m.origin
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if m.isClosed() {
		return "", false, ErrClosed
	}
	m.area.mu.Lock()
	defer m.area.mu.Unlock()
	v, ok := m.area.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if m.isClosed() {
		return ErrClosed
	}
	return m.area.write(ctx, m.origin, key, strPtr(value))
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if m.isClosed() {
		return ErrClosed
	}
	return m.area.write(ctx, m.origin, key, nil)
}

func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = append(m.cancel, cancel)
	m.mu.Unlock()

	sub := m.area.events.Subscribe(ctx)
	out := make(chan Event)

	go func() {
		defer close(out)
		defer sub.Close()

		for msg := range sub.Receive(ctx) {
			if msg.Sender == m.origin {
				continue
			}
			select {
			case out <- msg.Data:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close stops the watchers of this handle. The area stays usable by others.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, cancel := range m.cancel {
		cancel()
	}
	m.cancel = nil
	return nil
}

func (m *Memory) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
