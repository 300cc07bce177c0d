package repository

import "ca-assistant-be/pkg/store"

// SessionRepository stores per-conversation state. Implementations expire
// sessions after an idle TTL; callers must tolerate a session vanishing
// between calls.
type SessionRepository interface {
	Save(session *store.Session)
	Get(sessionID string) (*store.Session, bool)
	Delete(sessionID string)
}
