package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bandroom/internal/cache"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound is returned when a token ID is not (or no longer) registered.
var ErrSessionNotFound = errors.New("session not found")

// TokenStoreInterface defines the interface for session registry operations.
type TokenStoreInterface interface {
	StoreSession(ctx context.Context, tokenID, username string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (username string, err error)
	DeleteSession(ctx context.Context, tokenID string) error
}

// TokenStore keeps the live session tokens in Redis. A token whose ID is
// missing here has been logged out, even if its signature is still valid.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreSession registers a token ID for username with TTL.
func (s *TokenStore) StoreSession(ctx context.Context, tokenID, username string, ttl time.Duration) error {
	if err := s.cache.Set(ctx, sessionKeyPrefix+tokenID, []byte(username), ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// GetSession returns the username registered for tokenID. ErrSessionNotFound
// means the registry answered and the token is not in it; any other error
// means the registry could not be asked.
func (s *TokenStore) GetSession(ctx context.Context, tokenID string) (string, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+tokenID)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if data == nil {
		return "", ErrSessionNotFound
	}
	return string(data), nil
}

// DeleteSession removes a token ID from the registry.
func (s *TokenStore) DeleteSession(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
}
