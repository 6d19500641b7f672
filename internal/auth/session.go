package auth

import (
	"time"

	"github.com/google/uuid"

	"finsmart/internal/cache"
)

// Session binds an opaque token to a user id.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

// SessionManager keeps sessions in an LRU with TTL; tokens are random UUIDs.
type SessionManager struct {
	sessions *cache.LRUCache[Session]
}

const maxSessions = 10000

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{sessions: cache.NewLRUCache[Session](maxSessions, ttl)}
}

func (m *SessionManager) Create(userID string) Session {
	s := Session{Token: uuid.NewString(), UserID: userID, CreatedAt: time.Now().UTC()}
	m.sessions.Set(s.Token, s)
	return s
}

// Lookup returns the session for token. Lookups refresh the TTL.
func (m *SessionManager) Lookup(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s, ok := m.sessions.Get(token)
	if ok {
		m.sessions.Set(token, s)
	}
	return s, ok
}

func (m *SessionManager) Destroy(token string) {
	m.sessions.Delete(token)
}

// Cache exposes the underlying store for registration with a cache.Manager.
func (m *SessionManager) Cache() *cache.LRUCache[Session] {
	return m.sessions
}
