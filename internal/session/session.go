// Package session tracks which profile is acting in an API request.
// A Manager is constructed and passed where it is needed; there is no
// package-level instance.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealmatch/internal/model"
)

// DefaultTTL is how long an issued session stays valid without renewal.
const DefaultTTL = 24 * time.Hour

// Session binds an opaque token to a profile.
type Session struct {
	Token     string     `json:"token"`
	ProfileID string     `json:"profile_id"`
	Role      model.Role `json:"role"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Manager issues and resolves session tokens. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a Manager with the given TTL; zero means DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a session for a profile and returns it.
func (m *Manager) Issue(profileID string, role model.Role) Session {
	now := m.now()
	s := Session{
		Token:     uuid.NewString(),
		ProfileID: profileID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Resolve returns the session for a token. Expired sessions are removed
// and reported as invalid.
func (m *Manager) Resolve(token string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return Session{}, eris.New("session: invalid token")
	}
	if s.Expired(m.now()) {
		m.Revoke(token)
		return Session{}, eris.New("session: token expired")
	}
	return s, nil
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Active returns the number of unexpired sessions.
func (m *Manager) Active() int {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.sessions {
		if !s.Expired(now) {
			n++
		}
	}
	return n
}
