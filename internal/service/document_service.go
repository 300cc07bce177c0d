package service

import (
	"context"
	"encoding/json"
	"time"

	"ca-assistant-be/internal/constant"
	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/internal/repository"
	"ca-assistant-be/pkg/events"
	"ca-assistant-be/pkg/extract"
	pktNats "ca-assistant-be/pkg/nats"
	"ca-assistant-be/pkg/store"
)

type IDocumentService interface {
	Upload(ctx context.Context, sessionID, fileName string, content []byte) (*dto.DocumentResponse, error)
	List(sessionID string) (*dto.ListDocumentsResponse, error)
	Delete(sessionID, documentID string) error
}

type documentService struct {
	processor      *extract.Processor
	sessionRepo    repository.SessionRepository
	eventPublisher *pktNats.Publisher
	summaryQueue   IPublisherService
	logger         logger.ILogger
}

func NewDocumentService(
	processor *extract.Processor,
	sessionRepo repository.SessionRepository,
	eventPublisher *pktNats.Publisher,
	summaryQueue IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		processor:      processor,
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
		summaryQueue:   summaryQueue,
		logger:         log,
	}
}

func (ds *documentService) Upload(ctx context.Context, sessionID, fileName string, content []byte) (*dto.DocumentResponse, error) {
	session := getOrCreateSession(ds.sessionRepo, sessionID)

	doc, err := ds.processor.Process(fileName, content)
	if err != nil {
		return nil, err
	}

	session.Documents = append(session.Documents, *doc)
	session.UpdatedAt = time.Now()
	ds.sessionRepo.Save(session)

	ds.publishDocumentProcessed(ctx, session.ID, doc)
	ds.queueSummaryRefinement(session.ID, doc.ID)

	res := documentDTO(session.ID, *doc)
	return &res, nil
}

func (ds *documentService) List(sessionID string) (*dto.ListDocumentsResponse, error) {
	res := &dto.ListDocumentsResponse{
		SessionId: sessionID,
		Documents: []dto.DocumentResponse{},
	}

	session, found := ds.sessionRepo.Get(sessionID)
	if !found {
		return res, nil
	}

	for _, doc := range session.Documents {
		res.Documents = append(res.Documents, documentDTO(session.ID, doc))
	}
	return res, nil
}

func (ds *documentService) Delete(sessionID, documentID string) error {
	session, found := ds.sessionRepo.Get(sessionID)
	if !found {
		return &dto.SessionNotFoundError{SessionId: sessionID}
	}

	if !session.RemoveDocument(documentID) {
		return &dto.DocumentNotFoundError{DocumentId: documentID}
	}

	session.UpdatedAt = time.Now()
	ds.sessionRepo.Save(session)
	return nil
}

func (ds *documentService) publishDocumentProcessed(ctx context.Context, sessionID string, doc *store.UploadedDocument) {
	if ds.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: constant.EventDocumentProcessed,
		Data: map[string]interface{}{
			"session_id":    sessionID,
			"document_id":   doc.ID,
			"document_name": doc.Name,
			"ext":           doc.Ext,
		},
		OccurredAt: time.Now(),
	}
	if err := ds.eventPublisher.Publish(ctx, evt); err != nil {
		ds.logger.Warn("DocumentService", "Failed to publish document processed event", map[string]interface{}{"error": err.Error()})
	}
}

// queueSummaryRefinement hands the document to the background consumer for an
// LLM rewrite of the heuristic summary. Upload never fails on queue errors.
func (ds *documentService) queueSummaryRefinement(sessionID, documentID string) {
	if ds.summaryQueue == nil {
		return
	}
	msg := dto.RefineSummaryMessage{
		SessionId:  sessionID,
		DocumentId: documentID,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		ds.logger.Error("DocumentService", "Failed to marshal summary refinement message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := ds.summaryQueue.Publish(context.Background(), payload); err != nil {
		ds.logger.Warn("DocumentService", "Failed to queue summary refinement", map[string]interface{}{"error": err.Error()})
	}
}

func documentDTO(sessionID string, doc store.UploadedDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		Id:         doc.ID,
		Name:       doc.Name,
		Ext:        doc.Ext,
		Summary:    doc.Summary,
		SessionId:  sessionID,
		UploadedAt: doc.UploadedAt,
	}
}
