package store

import "time"

// UploadedDocument is a user-supplied file attached to a chat session.
// It is created once by the extraction pipeline and never mutated afterwards;
// the summary-refinement worker replaces the whole document value instead of
// editing fields in place.
type UploadedDocument struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Ext           string                 `json:"ext"`
	ExtractedText string                 `json:"extracted_text"`
	Summary       string                 `json:"summary"`
	Metadata      map[string]interface{} `json:"metadata"`
	UploadedAt    time.Time              `json:"uploaded_at"`
}

// Session holds the per-conversation state. Uploaded documents belong to
// exactly one session and are dropped with it; nothing here is shared
// between concurrent sessions.
type Session struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	LastQuery string             `json:"last_query"`
	Documents []UploadedDocument `json:"documents"`
}

// DocumentByID returns the session document with the given id, if present.
func (s *Session) DocumentByID(id string) (UploadedDocument, bool) {
	for _, d := range s.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return UploadedDocument{}, false
}

// RemoveDocument drops the document with the given id and reports whether
// anything was removed.
func (s *Session) RemoveDocument(id string) bool {
	for i, d := range s.Documents {
		if d.ID == id {
			s.Documents = append(s.Documents[:i], s.Documents[i+1:]...)
			return true
		}
	}
	return false
}
