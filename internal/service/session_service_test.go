package service

import (
	"errors"
	"testing"

	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/repository/memory"
)

func TestCreateSession(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := NewSessionService(repo, newNopLogger())

	res, err := svc.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if res.SessionId == "" {
		t.Fatal("expected a generated session id")
	}
	if res.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if _, found := repo.Get(res.SessionId); !found {
		t.Fatalf("session %s was not persisted", res.SessionId)
	}
}

func TestDeleteSession(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := NewSessionService(repo, newNopLogger())

	created, err := svc.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(created.SessionId); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, found := repo.Get(created.SessionId); found {
		t.Fatal("session still present after delete")
	}

	err = svc.Delete(created.SessionId)
	var missing *dto.SessionNotFoundError
	if !errors.As(err, &missing) {
		t.Fatalf("second delete error = %v, want SessionNotFoundError", err)
	}
}
