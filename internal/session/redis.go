package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "mail-triage:session:"

// Redis is a Store backed by a Redis server, shared across processes.
type Redis struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedis creates a Redis-backed store. A zero ttl stores keys without expiry.
func NewRedis(rdb redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// Get loads and decodes the session stored for subject.
func (r *Redis) Get(ctx context.Context, subject string) (Session, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+subject).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotAuthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("rdb.Get failed: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("json.Unmarshal failed: %w", err)
	}

	return s, nil
}

// Put encodes s and stores it for subject, replacing any previous value.
func (r *Redis) Put(ctx context.Context, subject string, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %w", err)
	}

	if err := r.rdb.Set(ctx, redisKeyPrefix+subject, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("rdb.Set failed: %w", err)
	}

	return nil
}
