package dto

type ChatRequest struct {
	Message      string `json:"message" validate:"required"`
	SessionId    string `json:"session_id,omitempty"`
	UseWebSearch bool   `json:"use_web_search,omitempty"`
	Collection   string `json:"collection,omitempty"` // Scope the answer to one knowledge base collection
}

type CitationDTO struct {
	Kind           string  `json:"kind"` // "uploaded_document" | "knowledge_base" | "web"
	Label          string  `json:"label"`
	Origin         string  `json:"origin"`
	RelevanceScore float64 `json:"relevance_score"`
}

type ChatResponse struct {
	Response            string        `json:"response"`
	Confidence          float64       `json:"confidence"`
	Sources             []CitationDTO `json:"sources,omitempty"`
	UsedDocumentContext bool          `json:"used_document_context"`
	WebSearchUsed       bool          `json:"web_search_used"`
	UsedRefinement      bool          `json:"used_refinement"`
	DocumentsFound      int           `json:"documents_found"`
	SessionId           string        `json:"session_id"`
}

// --- Session Error Types ---

// SessionNotFoundError maps to a 404 at the controller.
type SessionNotFoundError struct {
	SessionId string
}

func (e *SessionNotFoundError) Error() string {
	return "session not found: " + e.SessionId
}
