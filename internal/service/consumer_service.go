package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ca-assistant-be/internal/constant"
	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/repository"
	"ca-assistant-be/pkg/events"
	"ca-assistant-be/pkg/llm"
	pktNats "ca-assistant-be/pkg/nats"
	"ca-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	sessionRepo    repository.SessionRepository
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessionRepo repository.SessionRepository,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		sessionRepo:    sessionRepo,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RefineSummaryMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Refining summary for DocumentId: %s", payload.DocumentId)

	if cs.llmProvider == nil {
		log.Printf("[WARN] No completion provider configured, keeping heuristic summary for %s", payload.DocumentId)
		msg.Ack() // Retrying without a provider cannot succeed.
		return
	}

	session, found := cs.sessionRepo.Get(payload.SessionId)
	if !found {
		log.Printf("[ERROR] Session not found: %s", payload.SessionId)
		msg.Ack() // Session expired? Ack.
		return
	}

	doc, ok := session.DocumentByID(payload.DocumentId)
	if !ok {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	chunks := utils.SplitText(doc.ExtractedText, constant.SummaryChunkSize, constant.SummaryChunkOverlap)
	if len(chunks) == 0 {
		log.Printf("[WARN] Document %s has no extractable text to summarize", payload.DocumentId)
		msg.Ack()
		return
	}

	// The head chunk carries the title page, headers, and opening sections,
	// which is where the substance of tax and audit documents sits.
	excerpt := chunks[0]
	log.Printf("[INFO] Generating summary for document %s (excerpt length: %d)", payload.DocumentId, len(excerpt))

	summary, err := cs.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.DocumentSummarySystemPrompt},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf(constant.DocumentSummaryPrompt, doc.Name, excerpt)},
	})
	if err != nil {
		log.Printf("[ERROR] Failed to generate summary for document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		log.Printf("[WARN] Empty summary returned for document %s, keeping heuristic summary", payload.DocumentId)
		msg.Ack()
		return
	}

	// Re-fetch: the session may have changed while the model was running.
	session, found = cs.sessionRepo.Get(payload.SessionId)
	if !found {
		log.Printf("[ERROR] Session expired during refinement: %s", payload.SessionId)
		msg.Ack()
		return
	}

	updated := false
	for i := range session.Documents {
		if session.Documents[i].ID == payload.DocumentId {
			session.Documents[i].Summary = summary
			updated = true
			break
		}
	}
	if !updated {
		log.Printf("[ERROR] Document removed during refinement: %s", payload.DocumentId)
		msg.Ack()
		return
	}

	session.UpdatedAt = time.Now()
	cs.sessionRepo.Save(session)

	cs.publishSummaryRefined(ctx, payload.SessionId, payload.DocumentId, doc.Name)

	log.Printf("[SUCCESS] Summary refined for DocumentId: %s", payload.DocumentId)
	msg.Ack()
}

func (cs *consumerService) publishSummaryRefined(ctx context.Context, sessionID, documentID, documentName string) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: constant.EventSummaryRefined,
		Data: map[string]interface{}{
			"session_id":    sessionID,
			"document_id":   documentID,
			"document_name": documentName,
		},
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish summary refined event: %v", err)
	}
}
