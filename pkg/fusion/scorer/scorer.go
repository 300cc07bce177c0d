package scorer

import (
	"log"
	"math"
	"strings"

	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/store"
)

// Relevance blending constants. These are tuned values; keep them in sync
// with the engine's acceptance tests when adjusting.
const (
	contentWeight = 0.7
	summaryWeight = 0.2
	nameWeight    = 0.1

	semanticWeight        = 0.7
	summarySemanticWeight = 0.2
	keywordWeight         = 0.1

	referenceTermBonus = 0.2
	filenameBonus      = 0.2

	contentChunkSize = 500
)

// documentReferenceTerms mark queries that talk about an uploaded file in
// general terms ("summarize the document") rather than its subject matter.
var documentReferenceTerms = []string{"file", "document", "upload", "data", "table", "sheet", "summarize", "summary"}

// Scorer computes query/text relevance. Semantic scoring goes through the
// injected embedding provider; when the provider is missing or failing the
// scorer silently degrades to keyword overlap so scoring never errors.
type Scorer struct {
	embedder embedding.EmbeddingProvider
	logger   *log.Logger
}

// NewScorer creates a scorer. embedder may be nil; keyword overlap is used
// for all semantic scores in that case.
func NewScorer(embedder embedding.EmbeddingProvider, logger *log.Logger) *Scorer {
	return &Scorer{
		embedder: embedder,
		logger:   logger,
	}
}

// KeywordRelevance scores a document's fields against the synonym-expanded
// query: per-field token overlap, weighted content 0.7 / summary 0.2 /
// name 0.1, capped at 1.0.
func (s *Scorer) KeywordRelevance(query, content, name, summary string) float64 {
	queryTokens := tokenSet(expandQueryTerms(strings.ToLower(query)))
	if len(queryTokens) == 0 {
		return 0
	}

	contentOverlap := overlapRatio(queryTokens, tokenSet(tokenize(strings.ToLower(content))))
	nameOverlap := overlapRatio(queryTokens, tokenSet(tokenize(strings.ToLower(name))))
	summaryOverlap := overlapRatio(queryTokens, tokenSet(tokenize(strings.ToLower(summary))))

	relevance := contentOverlap*contentWeight + summaryOverlap*summaryWeight + nameOverlap*nameWeight
	return math.Min(relevance, 1.0)
}

// TermOverlap scores a single text against the synonym-expanded query as
// plain token overlap in [0,1].
func (s *Scorer) TermOverlap(query, text string) float64 {
	queryTokens := tokenSet(expandQueryTerms(strings.ToLower(query)))
	if len(queryTokens) == 0 {
		return 0
	}
	return overlapRatio(queryTokens, tokenSet(tokenize(strings.ToLower(text))))
}

// SemanticRelevance returns one cosine-similarity score per candidate text.
// Any embedding failure falls back to TermOverlap for every candidate; the
// fallback is deterministic and no error escapes.
func (s *Scorer) SemanticRelevance(query string, candidates []string) []float64 {
	scores := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return scores
	}
	if s.embedder == nil {
		return s.overlapScores(query, candidates)
	}

	queryRes, err := s.embedder.Generate(strings.ToLower(query), "RETRIEVAL_QUERY")
	if err != nil || queryRes == nil || len(queryRes.Embedding.Values) == 0 {
		s.logf("[WARN] Query embedding unavailable, using keyword overlap: %v", err)
		return s.overlapScores(query, candidates)
	}

	for i, candidate := range candidates {
		res, err := s.embedder.Generate(candidate, "RETRIEVAL_DOCUMENT")
		if err != nil || res == nil || len(res.Embedding.Values) == 0 {
			s.logf("[WARN] Candidate embedding failed, using keyword overlap: %v", err)
			return s.overlapScores(query, candidates)
		}
		scores[i] = cosine(queryRes.Embedding.Values, res.Embedding.Values)
	}
	return scores
}

// CombinedRelevance blends semantic and keyword signals for one uploaded
// document: best content-chunk similarity 0.7, summary similarity 0.2,
// keyword relevance 0.1, +0.2 when the query uses document-reference terms,
// +0.2 when the query names the file, capped at 1.0. Empty documents score 0.
func (s *Scorer) CombinedRelevance(query string, doc store.UploadedDocument) float64 {
	if strings.TrimSpace(doc.ExtractedText) == "" {
		return 0
	}
	queryLower := strings.ToLower(query)
	if strings.TrimSpace(queryLower) == "" {
		return 0
	}

	chunks := splitIntoChunks(doc.ExtractedText, contentChunkSize)
	chunkScores := s.SemanticRelevance(queryLower, chunks)
	maxChunk := 0.0
	for _, score := range chunkScores {
		if score > maxChunk {
			maxChunk = score
		}
	}

	summarySim := 0.0
	if strings.TrimSpace(doc.Summary) != "" {
		summarySim = s.SemanticRelevance(queryLower, []string{strings.ToLower(doc.Summary)})[0]
	}

	keyword := s.KeywordRelevance(queryLower, doc.ExtractedText, doc.Name, doc.Summary)

	relevance := maxChunk*semanticWeight + summarySim*summarySemanticWeight + keyword*keywordWeight

	for _, term := range documentReferenceTerms {
		if strings.Contains(queryLower, term) {
			relevance += referenceTermBonus
			break
		}
	}

	if base := filenameBase(doc.Name); base != "" && strings.Contains(queryLower, base) {
		relevance += filenameBonus
	}

	// Cosine terms can be negative; the blended score is clamped to [0,1].
	return math.Min(math.Max(relevance, 0), 1.0)
}

func (s *Scorer) overlapScores(query string, candidates []string) []float64 {
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		scores[i] = s.TermOverlap(query, candidate)
	}
	return scores
}

func (s *Scorer) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// splitIntoChunks groups paragraphs greedily into chunks of at most maxSize
// characters; texts without paragraph breaks are grouped by sentences
// instead. Always returns at least one chunk for non-blank input.
func splitIntoChunks(content string, maxSize int) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	var parts []string
	for _, p := range strings.Split(trimmed, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	chunks := groupBySize(parts, maxSize)
	if len(chunks) == 0 {
		var sentences []string
		for _, sent := range strings.Split(trimmed, ".") {
			if sent = strings.TrimSpace(sent); sent != "" {
				sentences = append(sentences, sent+".")
			}
		}
		chunks = groupBySize(sentences, maxSize)
	}
	if len(chunks) == 0 {
		if len(trimmed) > maxSize {
			trimmed = trimmed[:maxSize]
		}
		chunks = []string{trimmed}
	}
	return chunks
}

func groupBySize(parts []string, maxSize int) []string {
	var chunks []string
	current := ""
	for _, part := range parts {
		if current != "" && len(current)+len(part) > maxSize {
			chunks = append(chunks, current)
			current = part
			continue
		}
		if current == "" {
			current = part
		} else {
			current += " " + part
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func tokenize(text string) []string {
	return strings.Fields(text)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func overlapRatio(query, text map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for token := range query {
		if _, ok := text[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// filenameBase returns the filename without its extension, lowercased, for
// the filename-in-query bonus.
func filenameBase(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
