package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session Session
	expires time.Time
}

// Memory is a process-local Store. Sessions are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemory creates an in-memory store. A zero ttl keeps sessions for the
// lifetime of the process.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the session stored for subject.
func (m *Memory) Get(_ context.Context, subject string) (Session, error) {
	m.mu.RLock()
	e, ok := m.entries[subject]
	m.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotAuthenticated
	}

	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.mu.Lock()
		// re-check, a login may have replaced the entry meanwhile
		if cur, ok := m.entries[subject]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, subject)
		}
		m.mu.Unlock()

		return Session{}, ErrNotAuthenticated
	}

	return e.session, nil
}

// Put stores s for subject, replacing any previous session.
func (m *Memory) Put(_ context.Context, subject string, s Session) error {
	e := memoryEntry{session: s}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[subject] = e

	return nil
}
