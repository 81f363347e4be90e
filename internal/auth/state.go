package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const defaultStateTTL = 5 * time.Minute

// StateStore issues single-use OAuth state values with a bounded lifetime.
type StateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]time.Time
}

// NewStateStore creates a StateStore; a non-positive ttl uses five minutes.
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}

	return &StateStore{
		ttl:    ttl,
		now:    time.Now,
		states: make(map[string]time.Time),
	}
}

// Generate returns a new random state and drops expired ones.
func (s *StateStore) Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.states[state] = now.Add(s.ttl)

	for st, exp := range s.states {
		if exp.Before(now) {
			delete(s.states, st)
		}
	}

	return state, nil
}

// Consume reports whether state was issued and has not expired. A state
// can be consumed once.
func (s *StateStore) Consume(state string) bool {
	if state == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.states[state]
	if !exists {
		return false
	}

	delete(s.states, state)

	return !s.now().After(expiry)
}
