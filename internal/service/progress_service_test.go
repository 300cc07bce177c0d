package service

import (
	"context"
	"testing"
	"time"

	"ca-assistant-be/internal/constant"
	"ca-assistant-be/pkg/events"
)

func TestHandleEventForwardsDocumentLifecycle(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		wantStage string
	}{
		{
			name:      "document processed",
			eventType: constant.EventDocumentProcessed,
			wantStage: constant.StageDocumentProcessed,
		},
		{
			name:      "summary refined",
			eventType: constant.EventSummaryRefined,
			wantStage: constant.StageSummaryRefined,
		},
		{
			name:      "subject-prefixed type",
			eventType: "events." + constant.EventDocumentProcessed,
			wantStage: constant.StageDocumentProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &progressRecorder{}
			svc := NewProgressService(nil, recorder, newNopLogger())

			err := svc.handleEvent(context.Background(), events.BaseEvent{
				Type: tt.eventType,
				Data: map[string]interface{}{
					"session_id":    "session-1",
					"document_name": "ledger.xlsx",
				},
				OccurredAt: time.Now(),
			})
			if err != nil {
				t.Fatalf("handleEvent returned error: %v", err)
			}

			updates := recorder.updates
			if len(updates) != 1 {
				t.Fatalf("delivered %d updates, want 1", len(updates))
			}
			if updates[0].Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", updates[0].Stage, tt.wantStage)
			}
			if updates[0].SessionId != "session-1" {
				t.Errorf("SessionId = %q, want session-1", updates[0].SessionId)
			}
			if updates[0].Message != "ledger.xlsx" {
				t.Errorf("Message = %q, want the document name", updates[0].Message)
			}
		})
	}
}

func TestHandleEventSkipsUntrackedTypes(t *testing.T) {
	recorder := &progressRecorder{}
	svc := NewProgressService(nil, recorder, newNopLogger())

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type:       constant.EventQueryAnswered,
		Data:       map[string]interface{}{"session_id": "session-1"},
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("handleEvent returned error: %v", err)
	}
	if len(recorder.updates) != 0 {
		t.Errorf("delivered %d updates for an untracked event, want 0", len(recorder.updates))
	}
}

func TestHandleEventRequiresSessionId(t *testing.T) {
	recorder := &progressRecorder{}
	svc := NewProgressService(nil, recorder, newNopLogger())

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type:       constant.EventDocumentProcessed,
		Data:       map[string]interface{}{"document_name": "ledger.xlsx"},
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("handleEvent returned error: %v", err)
	}
	if len(recorder.updates) != 0 {
		t.Errorf("delivered %d updates without a session id, want 0", len(recorder.updates))
	}
}
