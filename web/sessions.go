package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	userID    int64
	expiresAt time.Time
}

// sessionStore keeps signed-in sessions in memory. Tokens are random UUIDs
// and expire after the configured lifetime; expired entries are dropped on
// lookup.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[string]session),
	}
}

func (s *sessionStore) Create(userID int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.sessions[token] = session{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return token
}

func (s *sessionStore) Get(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, token)
		return 0, false
	}
	return entry.userID, true
}

func (s *sessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
