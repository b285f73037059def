package webstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the keys and the event channel of an area.
const DefaultKeyPrefix = "paymybuddy:storage:"

// Redis is a handle on an area stored in Redis. Handles of different
// processes sharing the same prefix form one area; changes are fanned out
// through a pub/sub channel.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	channel string
	origin  string

	mu      sync.Mutex
	closed  bool
	pubsubs []*redis.PubSub
}

var _ Storage = (*Redis)(nil)

// RedisOption configures a Redis handle.
type RedisOption func(*Redis)

// WithKeyPrefix sets the namespace of the area.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRedis opens a handle on the area. The client is owned by the caller.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultKeyPrefix,
		origin: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.channel = r.prefix + "events"
	return r
}

func (r *Redis) Origin() string {
	return r.origin
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if r.isClosed() {
		return "", false, ErrClosed
	}
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(ErrReadFailed, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.write(ctx, key, strPtr(value))
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.write(ctx, key, nil)
}

// write applies the change and publishes its event in one transaction.
func (r *Redis) write(ctx context.Context, key string, value *string) error {
	if r.isClosed() {
		return ErrClosed
	}

	payload, err := json.Marshal(Event{Key: key, NewValue: value, Origin: r.origin})
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if value == nil {
			pipe.Del(ctx, r.prefix+key)
		} else {
			pipe.Set(ctx, r.prefix+key, *value, 0)
		}
		pipe.Publish(ctx, r.channel, payload)
		return nil
	})
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Watch subscribes to the area's channel. The subscription is confirmed
// before Watch returns, so writes made afterwards are never missed.
func (r *Redis) Watch(ctx context.Context) (<-chan Event, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}

	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Join(ErrWatchFailed, err)
	}

	r.mu.Lock()
	r.pubsubs = append(r.pubsubs, pubsub)
	r.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		defer r.release(pubsub)

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				if ev.Origin == r.origin {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close stops the watchers of this handle.
func (r *Redis) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	pubsubs := r.pubsubs
	r.pubsubs = nil
	r.mu.Unlock()

	var errs []error
	for _, ps := range pubsubs {
		if err := ps.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("webstorage: close watchers: %w", errors.Join(errs...))
	}
	return nil
}

func (r *Redis) release(pubsub *redis.PubSub) {
	r.mu.Lock()
	for i, ps := range r.pubsubs {
		if ps == pubsub {
			r.pubsubs = append(r.pubsubs[:i:i], r.pubsubs[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	_ = pubsub.Close()
}

func (r *Redis) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
