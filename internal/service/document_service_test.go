package service

import (
	"context"
	"errors"
	"testing"

	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/repository/memory"
	"ca-assistant-be/pkg/extract"
)

func newTestDocumentService(repo *memory.SessionRepository) IDocumentService {
	return NewDocumentService(extract.NewProcessor(0), repo, nil, nil, newNopLogger())
}

func TestUploadCreatesSessionAndStoresDocument(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := newTestDocumentService(repo)

	res, err := svc.Upload(context.Background(), "", "balance_sheet.txt", []byte("Assets and liabilities as of 31 March 2025."))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if res.Id == "" {
		t.Fatal("expected a generated document id")
	}
	if res.SessionId == "" {
		t.Fatal("expected a generated session id")
	}
	if res.Ext != ".txt" {
		t.Errorf("Ext = %q, want .txt", res.Ext)
	}

	session, found := repo.Get(res.SessionId)
	if !found {
		t.Fatalf("session %s was not persisted", res.SessionId)
	}
	if len(session.Documents) != 1 {
		t.Fatalf("session holds %d documents, want 1", len(session.Documents))
	}
	if session.Documents[0].ID != res.Id {
		t.Errorf("stored document id = %q, want %q", session.Documents[0].ID, res.Id)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := newTestDocumentService(repo)

	_, err := svc.Upload(context.Background(), "", "scan.png", []byte{0x89, 0x50})
	if err == nil {
		t.Fatal("expected an error for an unsupported file type")
	}
	var unsupported *extract.UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedTypeError", err)
	}
}

func TestListDocuments(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := newTestDocumentService(repo)

	uploaded, err := svc.Upload(context.Background(), "", "gst_filing.txt", []byte("GSTR-3B summary for July."))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	res, err := svc.List(uploaded.SessionId)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(res.Documents) != 1 {
		t.Fatalf("List returned %d documents, want 1", len(res.Documents))
	}
	if res.Documents[0].Name != "gst_filing.txt" {
		t.Errorf("document name = %q, want gst_filing.txt", res.Documents[0].Name)
	}
}

func TestListDocumentsUnknownSession(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := newTestDocumentService(repo)

	res, err := svc.List("never-seen")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(res.Documents) != 0 {
		t.Errorf("List returned %d documents for an unknown session, want 0", len(res.Documents))
	}
}

func TestDeleteDocument(t *testing.T) {
	repo := memory.NewSessionRepository()
	svc := newTestDocumentService(repo)

	uploaded, err := svc.Upload(context.Background(), "", "advance_tax.txt", []byte("Quarterly advance tax installments."))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if err := svc.Delete(uploaded.SessionId, uploaded.Id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	session, _ := repo.Get(uploaded.SessionId)
	if len(session.Documents) != 0 {
		t.Errorf("session still holds %d documents after delete", len(session.Documents))
	}

	err = svc.Delete(uploaded.SessionId, uploaded.Id)
	var missingDoc *dto.DocumentNotFoundError
	if !errors.As(err, &missingDoc) {
		t.Fatalf("second delete error = %v, want DocumentNotFoundError", err)
	}

	err = svc.Delete("never-seen", uploaded.Id)
	var missingSession *dto.SessionNotFoundError
	if !errors.As(err, &missingSession) {
		t.Fatalf("unknown-session delete error = %v, want SessionNotFoundError", err)
	}
}
