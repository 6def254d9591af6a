// Package session remembers the last authenticated user of the console,
// so a restart can render the signed-in state before the backend is asked
// again.  The identity lives in Redis when available and in memory
// otherwise.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// MinTTL keeps an identity whose token is about to expire long enough
// for the refresh round trip.
const MinTTL = time.Minute

// Store is safe for concurrent use.
type Store struct {
	rdb        *redis.Client // nil means memory only
	key        string
	defaultTTL time.Duration
	now        func() time.Time
	log        *slog.Logger

	mu     sync.Mutex
	mem    *model.User
	expiry time.Time
}

// NewStore keys the identity under prefix.  rdb may be nil.
func NewStore(rdb *redis.Client, prefix string, defaultTTL time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	if defaultTTL <= 0 {
		defaultTTL = 12 * time.Hour
	}
	return &Store{
		rdb:        rdb,
		key:        prefix + ":current",
		defaultTTL: defaultTTL,
		now:        time.Now,
		log:        log.With("component", "session"),
	}
}

// TTL returns how long an identity backed by accessToken should live.
func (s *Store) TTL(accessToken string) time.Duration {
	c, err := ClaimsFromToken(accessToken)
	if err != nil || c.ExpiresAt.IsZero() {
		return s.defaultTTL
	}
	return max(c.ExpiresAt.Sub(s.now()), MinTTL)
}

// Save stores u.  Missing fields are filled from the token claims.
func (s *Store) Save(ctx context.Context, u model.User, accessToken string) error {
	if c, err := ClaimsFromToken(accessToken); err == nil {
		if u.UserID == "" {
			u.UserID = c.Subject
		}
		if u.Email == "" {
			u.Email = c.Email
		}
	}
	if u.UserID == "" {
		return errors.New("identity without user id")
	}
	ttl := s.TTL(accessToken)

	s.mu.Lock()
	s.mem = &u
	s.expiry = s.now().Add(ttl)
	s.mu.Unlock()

	if s.rdb == nil {
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, b, ttl).Err(); err != nil {
		s.log.Warn("redis unavailable, identity kept in memory", "error", err)
	}
	return nil
}

// Load returns the stored identity.  ok is false when none is stored or
// it expired.
func (s *Store) Load(ctx context.Context) (model.User, bool) {
	if s.rdb != nil {
		b, err := s.rdb.Get(ctx, s.key).Bytes()
		switch {
		case err == nil:
			var u model.User
			if jerr := json.Unmarshal(b, &u); jerr == nil {
				return u, true
			}
			s.log.Warn("discarding unreadable identity")
			_ = s.rdb.Del(ctx, s.key).Err()
			return model.User{}, false
		case errors.Is(err, redis.Nil):
			return model.User{}, false
		default:
			s.log.Warn("redis unavailable, reading identity from memory", "error", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem == nil || !s.now().Before(s.expiry) {
		return model.User{}, false
	}
	return *s.mem, true
}

// Clear forgets the identity (logout, or the session could not be renewed).
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.mem = nil
	s.mu.Unlock()
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		s.log.Warn("failed to clear identity in redis", "error", err)
		return err
	}
	return nil
}
