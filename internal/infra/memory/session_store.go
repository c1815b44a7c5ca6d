package memory

import (
	"sync"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
// One active session per user.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Put(userID string, session *app.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[userID]; ok && !existing.Finished() {
		return domain.ErrSessionActive
	}
	r.sessions[userID] = session
	return nil
}

func (r *SessionRegistry) Get(userID string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[userID]
	return session, ok
}

func (r *SessionRegistry) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
