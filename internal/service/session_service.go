package service

import (
	"time"

	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/internal/repository"
	"ca-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create() (*dto.CreateSessionResponse, error)
	Delete(sessionID string) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	logger      logger.ILogger
}

func NewSessionService(sessionRepo repository.SessionRepository, log logger.ILogger) ISessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		logger:      log,
	}
}

func (ss *sessionService) Create() (*dto.CreateSessionResponse, error) {
	now := time.Now()
	session := &store.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ss.sessionRepo.Save(session)

	ss.logger.Info("SessionService", "Session created", map[string]interface{}{"session_id": session.ID})

	return &dto.CreateSessionResponse{
		SessionId: session.ID,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (ss *sessionService) Delete(sessionID string) error {
	if _, found := ss.sessionRepo.Get(sessionID); !found {
		return &dto.SessionNotFoundError{SessionId: sessionID}
	}
	ss.sessionRepo.Delete(sessionID)
	return nil
}
