package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/repository/memory"
	"ca-assistant-be/pkg/llm"
	"ca-assistant-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type stubCompletion struct {
	reply string
	err   error
}

func (s *stubCompletion) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *stubCompletion) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.reply, s.err
}

func seedSessionWithDocument(repo *memory.SessionRepository) *store.Session {
	session := &store.Session{
		ID:        "session-1",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Documents: []store.UploadedDocument{
			{
				ID:            "doc-1",
				Name:          "audit_report.txt",
				Ext:           ".txt",
				ExtractedText: "The statutory audit for FY 2024-25 covered revenue recognition and inventory valuation.",
				Summary:       "Text file audit_report.txt",
				UploadedAt:    time.Now(),
			},
		},
	}
	repo.Save(session)
	return session
}

func refineMessage(t *testing.T, sessionID, documentID string) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.RefineSummaryMessage{SessionId: sessionID, DocumentId: documentID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return message.NewMessage(watermill.NewUUID(), payload)
}

func assertAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
}

func assertNacked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Nacked():
	default:
		t.Fatal("message was not nacked")
	}
}

func TestConsumerRefinesSummary(t *testing.T) {
	repo := memory.NewSessionRepository()
	seedSessionWithDocument(repo)

	cs := &consumerService{
		sessionRepo: repo,
		llmProvider: &stubCompletion{reply: "Statutory audit report covering revenue recognition and inventory valuation for FY 2024-25."},
	}

	msg := refineMessage(t, "session-1", "doc-1")
	cs.processMessage(context.Background(), msg)
	assertAcked(t, msg)

	session, _ := repo.Get("session-1")
	doc, ok := session.DocumentByID("doc-1")
	if !ok {
		t.Fatal("document disappeared")
	}
	if doc.Summary != "Statutory audit report covering revenue recognition and inventory valuation for FY 2024-25." {
		t.Errorf("Summary = %q, want the refined text", doc.Summary)
	}
}

func TestConsumerNacksOnCompletionFailure(t *testing.T) {
	repo := memory.NewSessionRepository()
	seedSessionWithDocument(repo)

	cs := &consumerService{
		sessionRepo: repo,
		llmProvider: &stubCompletion{err: errors.New("rate limited")},
	}

	msg := refineMessage(t, "session-1", "doc-1")
	cs.processMessage(context.Background(), msg)
	assertNacked(t, msg)

	session, _ := repo.Get("session-1")
	doc, _ := session.DocumentByID("doc-1")
	if doc.Summary != "Text file audit_report.txt" {
		t.Errorf("Summary = %q, want the heuristic summary untouched", doc.Summary)
	}
}

func TestConsumerAcksPoisonMessages(t *testing.T) {
	repo := memory.NewSessionRepository()
	cs := &consumerService{
		sessionRepo: repo,
		llmProvider: &stubCompletion{reply: "unused"},
	}

	tests := []struct {
		name string
		msg  *message.Message
	}{
		{
			name: "malformed payload",
			msg:  message.NewMessage(watermill.NewUUID(), []byte("{not json")),
		},
		{
			name: "unknown session",
			msg:  refineMessage(t, "no-such-session", "doc-1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs.processMessage(context.Background(), tt.msg)
			assertAcked(t, tt.msg)
		})
	}
}

func TestConsumerAcksUnknownDocument(t *testing.T) {
	repo := memory.NewSessionRepository()
	seedSessionWithDocument(repo)

	cs := &consumerService{
		sessionRepo: repo,
		llmProvider: &stubCompletion{reply: "unused"},
	}

	msg := refineMessage(t, "session-1", "no-such-doc")
	cs.processMessage(context.Background(), msg)
	assertAcked(t, msg)
}

func TestConsumerAcksWithoutProvider(t *testing.T) {
	repo := memory.NewSessionRepository()
	seedSessionWithDocument(repo)

	cs := &consumerService{sessionRepo: repo}

	msg := refineMessage(t, "session-1", "doc-1")
	cs.processMessage(context.Background(), msg)
	assertAcked(t, msg)

	session, _ := repo.Get("session-1")
	doc, _ := session.DocumentByID("doc-1")
	if doc.Summary != "Text file audit_report.txt" {
		t.Errorf("Summary = %q, want the heuristic summary untouched", doc.Summary)
	}
}
