package service

import (
	"context"
	"time"

	"ca-assistant-be/internal/constant"
	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/model"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/internal/repository"
	"ca-assistant-be/pkg/events"
	"ca-assistant-be/pkg/fusion"
	pktNats "ca-assistant-be/pkg/nats"
	"ca-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	engine         *fusion.Engine
	sessionRepo    repository.SessionRepository
	eventPublisher *pktNats.Publisher
	progress       ProgressDelivery
	logger         logger.ILogger
}

func NewChatService(
	engine *fusion.Engine,
	sessionRepo repository.SessionRepository,
	eventPublisher *pktNats.Publisher,
	progress ProgressDelivery,
	log logger.ILogger,
) IChatService {
	return &chatService{
		engine:         engine,
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
		progress:       progress,
		logger:         log,
	}
}

func (cs *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session := getOrCreateSession(cs.sessionRepo, req.SessionId)

	if cs.progress != nil {
		sessionID := session.ID
		ctx = fusion.WithProgress(ctx, func(stage string) {
			cs.progress.Send(sessionID, model.ProgressUpdate{
				SessionId: sessionID,
				Stage:     stage,
				Timestamp: time.Now(),
			})
		})
	}

	var bundle store.AnswerBundle
	if req.Collection != "" {
		bundle = cs.engine.AnswerFromCollection(ctx, req.Message, req.Collection)
	} else {
		bundle = cs.engine.Answer(ctx, req.Message, req.UseWebSearch, session.Documents)
	}

	session.LastQuery = req.Message
	session.UpdatedAt = time.Now()
	cs.sessionRepo.Save(session)

	cs.publishQueryAnswered(ctx, session.ID, bundle)

	return &dto.ChatResponse{
		Response:            bundle.FinalAnswer,
		Confidence:          bundle.Confidence,
		Sources:             citationDTOs(bundle.Citations),
		UsedDocumentContext: bundle.UsedDocumentContext,
		WebSearchUsed:       bundle.UsedWebSearch,
		UsedRefinement:      bundle.UsedRefinement,
		DocumentsFound:      bundle.DocumentsFound,
		SessionId:           session.ID,
	}, nil
}

func (cs *chatService) publishQueryAnswered(ctx context.Context, sessionID string, bundle store.AnswerBundle) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: constant.EventQueryAnswered,
		Data: map[string]interface{}{
			"session_id":      sessionID,
			"confidence":      bundle.Confidence,
			"documents_found": bundle.DocumentsFound,
			"web_search_used": bundle.UsedWebSearch,
			"used_refinement": bundle.UsedRefinement,
		},
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish query answered event", map[string]interface{}{"error": err.Error()})
	}
}

// getOrCreateSession loads the session, creating one when the id is empty
// or the session expired. Recreating under a client-supplied id keeps the
// client's handle stable across the TTL.
func getOrCreateSession(repo repository.SessionRepository, sessionID string) *store.Session {
	if sessionID != "" {
		if session, found := repo.Get(sessionID); found {
			return session
		}
	} else {
		sessionID = uuid.NewString()
	}

	now := time.Now()
	session := &store.Session{
		ID:        sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.Save(session)
	return session
}

func citationDTOs(citations []store.SourceCitation) []dto.CitationDTO {
	if len(citations) == 0 {
		return nil
	}
	out := make([]dto.CitationDTO, 0, len(citations))
	for _, c := range citations {
		out = append(out, dto.CitationDTO{
			Kind:           c.Kind,
			Label:          c.Label,
			Origin:         c.Origin,
			RelevanceScore: c.RelevanceScore,
		})
	}
	return out
}
