package redis

import (
	"context"
	"sync"
	"time"

	"ultimate-trivia/internal/app"
	"ultimate-trivia/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - It still keeps a local in-memory map of sessions because Session holds
//     a live timer and event channel that cannot cross process boundaries.
//   - Redis is used to mark session liveness, so replicas can refuse to start
//     a second quiz for a user who is mid-session elsewhere.
//   - For true distribution you'd pair this with a pub/sub projector that fans
//     out session events.
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionRegistry) Put(userID string, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[userID]; ok && !existing.Finished() {
		return domain.ErrSessionActive
	}
	if s.sessions[userID] == nil {
		// liveness marker held by another replica
		n, err := s.client.Exists(context.Background(), s.key(userID)).Result()
		if err == nil && n > 0 {
			return domain.ErrSessionActive
		}
	}
	s.sessions[userID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(userID), "1", s.ttl).Err()
	return nil
}

func (s *SessionRegistry) Get(userID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *SessionRegistry) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	_ = s.client.Del(context.Background(), s.key(userID)).Err()
}

func (s *SessionRegistry) key(userID string) string {
	return "quiz:session:" + userID
}
