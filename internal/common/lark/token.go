package lark

import (
	"context"
	"sync"
	"time"

	"bitable-intake/internal/common/logger"

	"golang.org/x/sync/singleflight"
)

// Clock returns the current time.
type Clock func() time.Time

// Token is a tenant access token and the instant it stops being valid.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the token is still usable skew after now.
func (t Token) ValidAt(now time.Time, skew time.Duration) bool {
	return t.Value != "" && t.ExpiresAt.After(now.Add(skew))
}

// TokenStore is the single slot the cache reads and refills.
// Load returns nil without error when the slot is empty.
type TokenStore interface {
	Load(ctx context.Context) (*Token, error)
	Save(ctx context.Context, token Token) error
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token *Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load(_ context.Context) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, nil
	}
	tok := *s.token
	return &tok, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &token
	return nil
}

// FetchFunc performs a credential exchange.
type FetchFunc func(ctx context.Context) (Token, error)

// TokenCache serves the stored token while it is valid and refreshes it
// otherwise. Concurrent misses share one refresh.
type TokenCache struct {
	store TokenStore
	fetch FetchFunc
	clock Clock
	skew  time.Duration
	group singleflight.Group
	log   logger.Logger
}

const refreshKey = "tenant_access_token"

func NewTokenCache(store TokenStore, fetch FetchFunc, clock Clock, skew time.Duration, log logger.Logger) *TokenCache {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &TokenCache{
		store: store,
		fetch: fetch,
		clock: clock,
		skew:  skew,
		log:   log,
	}
}

// Get returns a token valid for at least the configured skew.
func (tc *TokenCache) Get(ctx context.Context) (string, error) {
	if tok, ok := tc.cached(ctx); ok {
		return tok, nil
	}

	// the refresh outlives any one caller; each caller still stops waiting
	// when its own context ends
	flightCtx := context.WithoutCancel(ctx)
	ch := tc.group.DoChan(refreshKey, func() (interface{}, error) {
		// another flight may have refilled the slot while we waited
		if tok, ok := tc.cached(flightCtx); ok {
			return tok, nil
		}

		tok, err := tc.fetch(flightCtx)
		if err != nil {
			return "", err
		}

		if err := tc.store.Save(flightCtx, tok); err != nil {
			tc.log.WithError(err).Warn("Failed to store tenant access token", nil)
		}

		tc.log.Debug("Tenant access token refreshed", map[string]interface{}{
			"expiresAt": tok.ExpiresAt,
		})
		return tok.Value, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (tc *TokenCache) cached(ctx context.Context) (string, bool) {
	tok, err := tc.store.Load(ctx)
	if err != nil {
		tc.log.WithError(err).Warn("Failed to read cached tenant access token", nil)
		return "", false
	}
	if tok == nil || !tok.ValidAt(tc.clock(), tc.skew) {
		return "", false
	}
	return tok.Value, true
}
