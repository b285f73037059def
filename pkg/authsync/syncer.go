package authsync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/webstorage"
)

// SyncKey is the storage key used as a broadcast channel between tabs. It is
// written and immediately removed, so only the change event is observed.
const SyncKey = "sync:auth.update"

var (
	ErrAlreadyStarted = errors.New("authsync: syncer already started")
	ErrNotStarted     = errors.New("authsync: syncer not started")
)

// Syncer mirrors the updates of a tab's guard to the shared storage and
// applies the updates broadcast by the other tabs.
type Syncer struct {
	guard   *authguard.Guard
	storage webstorage.Storage
	tokens  TokenStore
	logger  *slog.Logger

	// writeMu keeps each token save and broadcast pair contiguous.
	writeMu sync.Mutex

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithTokenStore replaces the token slot. Defaults to DefaultTokenKey in the
// shared storage.
func WithTokenStore(ts TokenStore) Option {
	return func(s *Syncer) {
		if ts != nil {
			s.tokens = ts
		}
	}
}

// WithLogger sets the logger used for sync failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a syncer for guard over storage.
func New(guard *authguard.Guard, storage webstorage.Storage, opts ...Option) *Syncer {
	s := &Syncer{
		guard:   guard,
		storage: storage,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tokens == nil {
		s.tokens = NewStorageTokenStore(storage, DefaultTokenKey)
	}
	s.logger = s.logger.With(logger.Component("authsync"), slog.String("origin", storage.Origin()))
	return s
}

// Tokens returns the token slot written by the syncer.
func (s *Syncer) Tokens() TokenStore {
	return s.tokens
}

// Start registers the guard listener and starts watching the storage. The
// watch is established before Start returns.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	events, err := s.storage.Watch(ctx)
	if err != nil {
		cancel()
		return err
	}

	s.ctx = ctx
	s.cancel = cancel
	s.done = make(chan struct{})
	s.unsubscribe = s.guard.Subscribe(s.onUpdated)

	go s.watch(events, s.done)
	return nil
}

// Stop unregisters the listener and waits for the watcher to exit.
func (s *Syncer) Stop() error {
	s.mu.Lock()
	if s.done == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.unsubscribe()
	s.cancel()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	<-done
	return nil
}

// onUpdated persists the token and broadcasts the session to the other tabs.
// Updates applied from a peer are not echoed back.
func (s *Syncer) onUpdated(u authguard.Update) {
	if u.Origin == authguard.OriginPeer {
		return
	}

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	payload, err := json.Marshal(u.Session)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode session", logger.Error(err))
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.tokens.SaveToken(ctx, u.Session.Token); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist token", logger.Error(err))
	}
	if err := s.storage.Set(ctx, SyncKey, string(payload)); err != nil {
		s.logger.ErrorContext(ctx, "failed to broadcast session", logger.Error(err))
		return
	}
	if err := s.storage.Remove(ctx, SyncKey); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear broadcast key", logger.Error(err))
	}
}

func (s *Syncer) watch(events <-chan webstorage.Event, done chan struct{}) {
	defer close(done)

	for ev := range events {
		if ev.Key != SyncKey || ev.NewValue == nil {
			continue
		}

		var session *authguard.Session
		if err := json.Unmarshal([]byte(*ev.NewValue), &session); err != nil {
			s.logger.Warn("ignoring malformed session broadcast", slog.String("from", ev.Origin), logger.Error(err))
			continue
		}

		s.logger.Debug("applying session from peer", slog.String("from", ev.Origin), slog.Bool("authenticated", session != nil && session.Authenticated()))
		s.guard.Deserialize(session, authguard.WithOrigin(authguard.OriginPeer))
	}
}
