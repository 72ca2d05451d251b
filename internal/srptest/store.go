package srptest

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

// pendingSession holds the provider half of one exchange between Initiate and Respond.
type pendingSession struct {
	account     *account
	username    string
	clientA     *big.Int
	b           *big.Int // private ephemeral
	serverB     *big.Int
	secretBlock string
	expiresAt   time.Time
}

// sessionStore keeps pending exchanges keyed by an opaque session id. Entries are single-use
// and expire after ttl.
type sessionStore struct {
	sessions map[string]*pendingSession
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*pendingSession),
		ttl:      ttl,
		now:      now,
	}
}

// put stores p and returns its session id. Expired entries are dropped on the way.
func (s *sessionStore) put(p *pendingSession) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, key)
		}
	}

	p.expiresAt = now.Add(s.ttl)
	s.sessions[id] = p
	return id
}

// take removes and returns the session for id, or nil when it is unknown or expired.
func (s *sessionStore) take(id string) *pendingSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)

	if s.now().After(session.expiresAt) {
		return nil
	}
	return session
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
