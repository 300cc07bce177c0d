package store

// Citation source kinds, in final answer order.
const (
	CitationUploadedDocument = "uploaded_document"
	CitationKnowledgeBase    = "knowledge_base"
	CitationWeb              = "web"
)

// Passage is one scored snippet of evidence attributed to a single source.
// Immutable once produced; score descending is the only meaningful order.
type Passage struct {
	Text       string                 `json:"text"`
	SourceID   string                 `json:"source_id"`
	Collection string                 `json:"collection"`
	Title      string                 `json:"title"`
	Score      float64                `json:"score"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SourceCitation is the answer-facing reference to one piece of evidence.
type SourceCitation struct {
	Kind           string  `json:"kind"`
	Label          string  `json:"label"`
	Origin         string  `json:"origin"`
	RelevanceScore float64 `json:"relevance_score"`
}

// WebResult is a single normalized hit from the web search capability.
type WebResult struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Domain      string  `json:"domain"`
	Age         string  `json:"age,omitempty"`
	Relevance   float64 `json:"relevance"`
}

// WebResultSet is what the web evidence path hands to fusion. Used=false
// means the capability was skipped or failed; either way the set is safe to
// merge (empty slice, no error state).
type WebResultSet struct {
	Used    bool        `json:"used"`
	Results []WebResult `json:"results"`
}

// AnswerBundle is the final product of one answer() run. Produced fresh per
// query and never persisted.
type AnswerBundle struct {
	DraftAnswer string           `json:"draft_answer"`
	FinalAnswer string           `json:"final_answer"`
	Confidence  float64          `json:"confidence"`
	Citations   []SourceCitation `json:"citations"`

	UsedDocumentContext bool `json:"used_document_context"`
	UsedWebSearch       bool `json:"used_web_search"`
	UsedRefinement      bool `json:"used_refinement"`

	// DocumentsFound counts KB passages that survived filtering, for the
	// API response.
	DocumentsFound int `json:"documents_found"`
}
