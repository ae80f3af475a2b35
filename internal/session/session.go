package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"account-service/internal/cache"
	"account-service/internal/domain"
	"account-service/internal/xerrors"
)

const namespace = "session"

// Record is what we keep per active session: enough to answer "who is this
// token" without a round trip to the identity provider.
type Record struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Store keeps active sessions keyed by access token. One instance is wired
// into the server and passed down explicitly; there is no package-global
// state.
type Store struct {
	cache *cache.Cache
}

func NewStore(c *cache.Cache) *Store {
	return &Store{cache: c}
}

func (s *Store) Save(ctx context.Context, token string, ident domain.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(Record{UserID: ident.UserID, Email: ident.Email})
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, namespace, token, payload, ttl)
}

func (s *Store) Get(ctx context.Context, token string) (*Record, error) {
	raw, err := s.cache.Get(ctx, namespace, token)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, xerrors.ErrSessionNotFound
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, namespace, token)
}
