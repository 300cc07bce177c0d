package fusion

import (
	"context"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"ca-assistant-be/pkg/fusion/document"
	"ca-assistant-be/pkg/fusion/knowledge"
	"ca-assistant-be/pkg/fusion/webgate"
	"ca-assistant-be/pkg/store"
)

// Canned draft answers for the empty-evidence paths. These are normal
// outcomes, not errors.
const (
	noKnowledgeAnswer = "I apologize, but I couldn't find any relevant information in the knowledge base to answer your question. Please try rephrasing your question or ask about topics covered in the available documents."
	noExtractAnswer   = "I found some documents but couldn't extract specific information relevant to your query."
)

// Engine fuses uploaded documents, knowledge base passages and web results
// into one ranked, confidence-scored answer bundle.
// Source priority is fixed: uploaded documents, then knowledge base, then web.
type Engine struct {
	matcher   *document.Matcher
	retriever *knowledge.Retriever
	gate      *webgate.Gate
	refiner   *Refiner
	logger    *log.Logger
	config    Config
}

// Config encapsulates fusion parameters
type Config struct {
	Knowledge knowledge.Config
	Document  document.Config
	Web       webgate.Config

	// DocumentConfidence is pinned onto any answer drafted from an uploaded
	// document. A priority heuristic, not calibrated probability.
	DocumentConfidence float64
	// SupplementThreshold is the knowledge base confidence above which KB
	// text rides along as supplementary refinement context when a document
	// already answered.
	SupplementThreshold float64

	SearchTimeout     time.Duration
	CompletionTimeout time.Duration
}

// DefaultConfig returns default fusion configuration
func DefaultConfig() Config {
	return Config{
		Knowledge:           knowledge.DefaultConfig(),
		Document:            document.DefaultConfig(),
		Web:                 webgate.DefaultConfig(),
		DocumentConfidence:  0.9,
		SupplementThreshold: 0.3,
		SearchTimeout:       10 * time.Second,
		CompletionTimeout:   30 * time.Second,
	}
}

// NewEngine wires the fusion pipeline. refiner may be nil to skip style
// refinement; everything else is required.
func NewEngine(
	matcher *document.Matcher,
	retriever *knowledge.Retriever,
	gate *webgate.Gate,
	refiner *Refiner,
	logger *log.Logger,
	config Config,
) *Engine {
	return &Engine{
		matcher:   matcher,
		retriever: retriever,
		gate:      gate,
		refiner:   refiner,
		logger:    logger,
		config:    config,
	}
}

// Answer runs the full fusion pipeline for one query. It never returns an
// error: every external failure degrades to "no contribution from that
// source" and the bundle reports what was actually used.
func (e *Engine) Answer(ctx context.Context, query string, useWebSearch bool, documents []store.UploadedDocument) store.AnswerBundle {
	e.logger.Printf("[PIPELINE] Fusing evidence for query: %s", truncate(query, 50))
	notify := progressFrom(ctx)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 1: UPLOADED DOCUMENTS (pure, local, highest priority)
	// ═══════════════════════════════════════════════════════════════
	notify(StageSearchingDocuments)
	match := e.matcher.Match(query, documents, e.config.Document)
	if match.Relevant {
		e.logger.Printf("[PHASE 1] Document context matched (relevance %.3f)", match.MaxRelevance)
	} else {
		e.logger.Printf("[PHASE 1] No uploaded document matched")
	}

	// ═══════════════════════════════════════════════════════════════
	// PHASE 2: KNOWLEDGE BASE (always runs; primary when no document)
	// ═══════════════════════════════════════════════════════════════
	notify(StageSearchingKnowledgeBase)
	kbOutcome := Guard("knowledge_base", e.logger, func() ([]store.Passage, error) {
		searchCtx, cancel := context.WithTimeout(ctx, e.config.SearchTimeout)
		defer cancel()
		return e.retriever.Retrieve(searchCtx, query, e.config.Knowledge)
	})
	passages := kbOutcome.OrDefault(nil)
	kbConfidence := meanScore(passages)
	kbDraft := e.draftFromPassages(query, passages)

	e.logger.Printf("[PHASE 2] Knowledge base: %d passages, confidence %.3f", len(passages), kbConfidence)

	draft := kbDraft
	confidence := kbConfidence
	if match.Relevant {
		draft = match.AnswerFragment
		confidence = e.config.DocumentConfidence
	}

	// ═══════════════════════════════════════════════════════════════
	// PHASE 3: WEB EVIDENCE (permission flag OR low confidence/recency)
	// ═══════════════════════════════════════════════════════════════
	var webSet store.WebResultSet
	if useWebSearch || e.gate.ShouldSearch(query, kbConfidence, e.config.Web) {
		notify(StageSearchingWeb)
		searchCtx, cancel := context.WithTimeout(ctx, e.config.SearchTimeout)
		webSet = e.gate.Search(searchCtx, query, e.config.Web)
		cancel()
		e.logger.Printf("[PHASE 3] Web search used=%v, %d results", webSet.Used, len(webSet.Results))
	} else {
		e.logger.Printf("[PHASE 3] Web search not needed")
	}

	kbCitations := knowledgeCitations(passages)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 4: STYLE REFINEMENT (soft-fail keeps the draft)
	// ═══════════════════════════════════════════════════════════════
	finalAnswer := draft
	usedRefinement := false
	if e.refiner != nil {
		notify(StageRefiningAnswer)
		refineContext := draft
		if match.Relevant && kbConfidence > e.config.SupplementThreshold {
			refineContext += fmt.Sprintf("\n\nSUPPLEMENTARY KNOWLEDGE BASE INFO:\n%s", kbDraft)
		}
		if webSet.Used && len(webSet.Results) > 0 {
			refineContext += fmt.Sprintf("\n\nADDITIONAL WEB CONTEXT:\n%s", formatWebFindings(webSet.Results))
		}

		refineConfidence := kbConfidence
		if match.Relevant && refineConfidence < 0.8 {
			refineConfidence = 0.8
		}

		completionCtx, cancel := context.WithTimeout(ctx, e.config.CompletionTimeout)
		refined := e.refiner.Refine(completionCtx, RefineInput{
			Query:           query,
			Draft:           refineContext,
			Citations:       append(append([]store.SourceCitation{}, kbCitations...), match.Citations...),
			Confidence:      refineConfidence,
			DocumentContext: match.Relevant,
		})
		cancel()

		if value, ok := refined.Value(); ok {
			finalAnswer = value
			usedRefinement = true
			e.logger.Printf("[PHASE 4] Draft refined")
		} else {
			e.logger.Printf("[PHASE 4] Refinement skipped, keeping draft")
		}
	}

	citations := make([]store.SourceCitation, 0, len(match.Citations)+len(kbCitations)+len(webSet.Results))
	citations = append(citations, match.Citations...)
	citations = append(citations, kbCitations...)
	citations = append(citations, webCitations(webSet.Results)...)

	notify(StageComplete)
	return store.AnswerBundle{
		DraftAnswer:         draft,
		FinalAnswer:         finalAnswer,
		Confidence:          confidence,
		Citations:           citations,
		UsedDocumentContext: match.Relevant,
		UsedWebSearch:       webSet.Used,
		UsedRefinement:      usedRefinement,
		DocumentsFound:      len(passages),
	}
}

// AnswerFromCollection answers from a single knowledge base collection, with
// no document matching, web search or refinement. Used by scoped queries.
func (e *Engine) AnswerFromCollection(ctx context.Context, query, collection string) store.AnswerBundle {
	kbOutcome := Guard("knowledge_base", e.logger, func() ([]store.Passage, error) {
		searchCtx, cancel := context.WithTimeout(ctx, e.config.SearchTimeout)
		defer cancel()
		return e.retriever.RetrieveFromCollection(searchCtx, query, collection, e.config.Knowledge)
	})
	passages := kbOutcome.OrDefault(nil)

	if len(passages) == 0 {
		draft := fmt.Sprintf("I couldn't find relevant information in the %s collection. Please try a different query or check other collections.", collection)
		return store.AnswerBundle{
			DraftAnswer: draft,
			FinalAnswer: draft,
		}
	}

	draft := e.draftFromPassages(query, passages)
	return store.AnswerBundle{
		DraftAnswer:    draft,
		FinalAnswer:    draft,
		Confidence:     meanScore(passages),
		Citations:      knowledgeCitations(passages),
		DocumentsFound: len(passages),
	}
}

// draftFromPassages synthesizes a draft answer from knowledge base passages
// by pulling the highest-overlap sentences out of each.
func (e *Engine) draftFromPassages(query string, passages []store.Passage) string {
	if len(passages) == 0 {
		return noKnowledgeAnswer
	}

	var relevantInfo []string
	for _, passage := range passages {
		if content := strings.TrimSpace(passage.Text); content != "" {
			relevantInfo = append(relevantInfo, relevantSentences(content, query, 3)...)
		}
	}
	if len(relevantInfo) == 0 {
		return noExtractAnswer
	}

	var response strings.Builder
	response.WriteString("Based on the available documents, here's what I found:")
	for i, info := range relevantInfo {
		if i == 5 {
			break
		}
		fmt.Fprintf(&response, "\n%d. %s", i+1, strings.TrimSpace(info))
	}
	if len(passages) > 1 {
		fmt.Fprintf(&response, "\n\nThis information is compiled from %d relevant documents in the knowledge base.", len(passages))
	} else {
		response.WriteString("\n\nThis information is from 1 document in the knowledge base.")
	}
	return response.String()
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// relevantSentences returns the sentences sharing the most words with the
// query, best first, at most max.
func relevantSentences(content, query string, max int) []string {
	queryWords := wordSet(strings.ToLower(query))

	type scored struct {
		sentence string
		overlap  int
	}
	var kept []scored
	for _, raw := range sentenceBoundary.Split(content, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		overlap := overlapCount(queryWords, wordSet(strings.ToLower(sentence)))
		if overlap > 0 {
			kept = append(kept, scored{sentence: sentence, overlap: overlap})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].overlap > kept[j].overlap
	})

	result := make([]string, 0, max)
	for _, s := range kept {
		result = append(result, s.sentence)
		if len(result) == max {
			break
		}
	}
	return result
}

// formatWebFindings renders the top web results as refinement context.
func formatWebFindings(results []store.WebResult) string {
	var context strings.Builder
	context.WriteString("Recent web search findings:\n")
	for i, result := range results {
		if i == 3 {
			break
		}
		fmt.Fprintf(&context, "%d. %s\n", i+1, result.Title)
		fmt.Fprintf(&context, "   %s...\n", prefixRunes(result.Description, 200))
		fmt.Fprintf(&context, "   Source: %s\n\n", result.Domain)
	}
	return context.String()
}

func knowledgeCitations(passages []store.Passage) []store.SourceCitation {
	citations := make([]store.SourceCitation, 0, len(passages))
	for _, passage := range passages {
		title := passage.Title
		if title == "" {
			title = "Untitled"
		}
		collection := passage.Collection
		if collection == "" {
			collection = "Unknown"
		}
		citations = append(citations, store.SourceCitation{
			Kind:           store.CitationKnowledgeBase,
			Label:          title,
			Origin:         collection,
			RelevanceScore: round3(passage.Score),
		})
	}
	return citations
}

func webCitations(results []store.WebResult) []store.SourceCitation {
	citations := make([]store.SourceCitation, 0, len(results))
	for _, result := range results {
		citations = append(citations, store.SourceCitation{
			Kind:           store.CitationWeb,
			Label:          result.Title,
			Origin:         result.URL,
			RelevanceScore: round3(result.Relevance),
		})
	}
	return citations
}

// meanScore averages passage scores into the knowledge base confidence.
func meanScore(passages []store.Passage) float64 {
	if len(passages) == 0 {
		return 0
	}
	sum := 0.0
	for _, passage := range passages {
		sum += passage.Score
	}
	return round3(math.Min(sum/float64(len(passages)), 1.0))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(text) {
		set[word] = struct{}{}
	}
	return set
}

func overlapCount(a, b map[string]struct{}) int {
	count := 0
	for word := range a {
		if _, ok := b[word]; ok {
			count++
		}
	}
	return count
}

func prefixRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
