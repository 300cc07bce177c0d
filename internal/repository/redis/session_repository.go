package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ca-assistant-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 1 * time.Hour
)

// SessionRepository keeps sessions in Redis as JSON values so multiple
// instances can share them. The TTL matches the in-memory backend.
type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{
		rdb: rdb,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal session %s: %v", session.ID, err)
		return
	}
	if err := r.rdb.Set(context.Background(), sessionKeyPrefix+session.ID, data, sessionTTL).Err(); err != nil {
		log.Printf("[ERROR] Failed to save session %s to Redis: %v", session.ID, err)
	}
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	data, err := r.rdb.Get(context.Background(), sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[ERROR] Failed to read session %s from Redis: %v", sessionID, err)
		return nil, false
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Printf("[ERROR] Failed to unmarshal session %s: %v", sessionID, err)
		return nil, false
	}
	return &session, true
}

func (r *SessionRepository) Delete(sessionID string) {
	if err := r.rdb.Del(context.Background(), sessionKeyPrefix+sessionID).Err(); err != nil {
		log.Printf("[ERROR] Failed to delete session %s from Redis: %v", sessionID, err)
	}
}
