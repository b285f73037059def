package authsync

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/paymybuddy/pkg/webstorage"
)

// DefaultTokenKey is the storage key of the persisted token slot.
const DefaultTokenKey = "auth_token"

// TokenStore is the persisted token slot shared by the tabs.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
}

// StorageTokenStore keeps the token under a key of the shared storage.
type StorageTokenStore struct {
	storage webstorage.Storage
	key     string
}

// NewStorageTokenStore returns a token slot stored under key, or
// DefaultTokenKey when key is empty.
func NewStorageTokenStore(storage webstorage.Storage, key string) *StorageTokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &StorageTokenStore{storage: storage, key: key}
}

// LoadToken returns the persisted token, empty when none.
func (s *StorageTokenStore) LoadToken(ctx context.Context) (string, error) {
	token, _, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return "", fmt.Errorf("authsync: load token: %w", err)
	}
	return token, nil
}

// SaveToken persists token; an empty token clears the slot.
func (s *StorageTokenStore) SaveToken(ctx context.Context, token string) error {
	var err error
	if token == "" {
		err = s.storage.Remove(ctx, s.key)
	} else {
		err = s.storage.Set(ctx, s.key, token)
	}
	if err != nil {
		return fmt.Errorf("authsync: save token: %w", err)
	}
	return nil
}
