package dto

import "time"

type DocumentResponse struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Ext        string    `json:"ext"`
	Summary    string    `json:"summary"`
	SessionId  string    `json:"session_id"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ListDocumentsResponse struct {
	SessionId string             `json:"session_id"`
	Documents []DocumentResponse `json:"documents"`
}

// RefineSummaryMessage is the queue payload for the summary refinement
// worker.
type RefineSummaryMessage struct {
	SessionId  string `json:"session_id"`
	DocumentId string `json:"document_id"`
}

// DocumentNotFoundError maps to a 404 at the controller.
type DocumentNotFoundError struct {
	DocumentId string
}

func (e *DocumentNotFoundError) Error() string {
	return "document not found: " + e.DocumentId
}
