package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ca-assistant-be/internal/constant"
	"ca-assistant-be/internal/model"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/pkg/events"
	pktNats "ca-assistant-be/pkg/nats"
)

// ProgressDelivery defines how to push real-time updates to a session.
// Typically implemented by the WebSocket Hub.
type ProgressDelivery interface {
	Send(sessionID string, update model.ProgressUpdate)
}

// ProgressService turns document lifecycle events from the event bus into
// progress updates for the owning session. Chat pipeline stages reach the
// hub directly; this worker covers the async document path, which may
// complete on a different instance than the one holding the websocket.
type ProgressService struct {
	subscriber *pktNats.Subscriber
	delivery   ProgressDelivery
	logger     logger.ILogger
}

func NewProgressService(sub *pktNats.Subscriber, delivery ProgressDelivery, log logger.ILogger) *ProgressService {
	return &ProgressService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *ProgressService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "progress-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("ProgressService", "Failed to start progress subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("ProgressService", "Progress service started, listening to events.>", nil)
}

// Only document lifecycle events surface on the websocket; the others are
// for external consumers of the stream.
var eventStages = map[string]string{
	constant.EventDocumentProcessed: constant.StageDocumentProcessed,
	constant.EventSummaryRefined:    constant.StageSummaryRefined,
}

func (s *ProgressService) handleEvent(ctx context.Context, event events.Event) error {
	// Strip "events." prefix from type if present (NATS subject includes stream name)
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	stage, tracked := eventStages[typeCode]
	if !tracked {
		return nil
	}

	payload := event.Payload()
	sessionID, ok := payload["session_id"].(string)
	if !ok || sessionID == "" {
		s.logger.Warn("ProgressService", fmt.Sprintf("Event %s carries no session_id", typeCode), nil)
		return nil
	}

	message := ""
	if name, ok := payload["document_name"].(string); ok && name != "" {
		message = name
	}

	if s.delivery != nil {
		s.delivery.Send(sessionID, model.ProgressUpdate{
			SessionId: sessionID,
			Stage:     stage,
			Message:   message,
			Timestamp: time.Now(),
		})
	}
	return nil
}
