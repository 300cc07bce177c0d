package document

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"ca-assistant-be/pkg/fusion/scorer"
	"ca-assistant-be/pkg/fusion/splitter"
	"ca-assistant-be/pkg/store"
	"ca-assistant-be/pkg/utils"
)

// forceIncludeTerms are generic document questions ("summarize this") that
// should always get an answer from the first upload even when no document
// clears the relevance threshold.
var forceIncludeTerms = []string{"summarize", "summary", "what", "contain", "document", "this"}

// Matcher scores uploaded documents against a query and renders a
// document-grounded answer fragment from the best one.
type Matcher struct {
	scorer *scorer.Scorer
	logger *log.Logger
}

func NewMatcher(sc *scorer.Scorer, logger *log.Logger) *Matcher {
	return &Matcher{
		scorer: sc,
		logger: logger,
	}
}

// Config encapsulates matching parameters
type Config struct {
	RelevanceThreshold float64
	// ForcedRelevance is the assumed score for the force-included first
	// document on generic queries. Tunable; 0.5 trades precision for recall.
	ForcedRelevance    float64
	SectionThreshold   float64
	MaxSections        int
	SectionLength      int
	MaxKeywordSections int
	KeywordLength      int
	SummaryLength      int
}

// DefaultConfig returns default matching configuration
func DefaultConfig() Config {
	return Config{
		RelevanceThreshold: 0.05, // Lowered threshold to catch more documents
		ForcedRelevance:    0.5,
		SectionThreshold:   0.2,
		MaxSections:        8,
		SectionLength:      400,
		MaxKeywordSections: 3,
		KeywordLength:      150,
		SummaryLength:      200,
	}
}

// Match is the outcome of scoring uploads against one query.
type Match struct {
	Relevant       bool
	AnswerFragment string
	Citations      []store.SourceCitation
	MaxRelevance   float64
}

type scoredDocument struct {
	doc       store.UploadedDocument
	relevance float64
}

// Match scores every uploaded document, force-includes the first one for
// generic document questions, and builds the answer fragment from the most
// relevant. Scoring problems degrade to the document summary; Match never
// returns an error.
func (m *Matcher) Match(query string, documents []store.UploadedDocument, config Config) Match {
	if len(documents) == 0 {
		return Match{}
	}

	queryLower := strings.ToLower(query)

	var relevant []scoredDocument
	for _, doc := range documents {
		relevance := m.scorer.CombinedRelevance(queryLower, doc)
		m.logf("[DEBUG] Document %q relevance: %.3f", doc.Name, relevance)
		if relevance > config.RelevanceThreshold {
			relevant = append(relevant, scoredDocument{doc: doc, relevance: relevance})
		}
	}

	if len(relevant) == 0 {
		if !containsAny(queryLower, forceIncludeTerms) {
			return Match{}
		}
		m.logf("[DEBUG] Force-including first document %q for generic query", documents[0].Name)
		relevant = append(relevant, scoredDocument{doc: documents[0], relevance: config.ForcedRelevance})
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].relevance > relevant[j].relevance
	})

	fragment := m.renderFragment(queryLower, relevant, config)

	citations := make([]store.SourceCitation, 0, len(relevant))
	maxRelevance := 0.0
	for _, sd := range relevant {
		citations = append(citations, store.SourceCitation{
			Kind:           store.CitationUploadedDocument,
			Label:          sd.doc.Name,
			Origin:         sd.doc.ID,
			RelevanceScore: sd.relevance,
		})
		if sd.relevance > maxRelevance {
			maxRelevance = sd.relevance
		}
	}

	return Match{
		Relevant:       true,
		AnswerFragment: fragment,
		Citations:      citations,
		MaxRelevance:   maxRelevance,
	}
}

func (m *Matcher) renderFragment(queryLower string, relevant []scoredDocument, config Config) string {
	primary := relevant[0]

	if strings.TrimSpace(primary.doc.ExtractedText) == "" {
		return fmt.Sprintf("The document **%s** appears to be empty or couldn't be processed properly.", primary.doc.Name)
	}

	parts := []string{fmt.Sprintf("## Document Analysis: %s\n", primary.doc.Name)}

	sections := m.relevantSections(queryLower, primary.doc.ExtractedText, config)
	if len(sections) > 0 {
		parts = append(parts, "### Key Information Found:\n")
		shown := sections
		if len(shown) > config.MaxSections {
			shown = shown[:config.MaxSections]
		}
		for i, section := range shown {
			cleaned := strings.Join(strings.Fields(section), " ")
			parts = append(parts, fmt.Sprintf("**%d.** %s\n", i+1, utils.Truncate(cleaned, config.SectionLength)))
		}

		parts = append(parts, "### Analysis Summary")
		parts = append(parts, fmt.Sprintf("• **Document processed:** %s", primary.doc.Name))
		parts = append(parts, fmt.Sprintf("• **Relevant sections found:** %d", len(sections)))
		parts = append(parts, fmt.Sprintf("• **Document relevance score:** %.3f", primary.relevance))
		if primary.doc.Summary != "" {
			parts = append(parts, fmt.Sprintf("• **Document summary:** %s...", firstRunes(primary.doc.Summary, config.SummaryLength)))
		}
		parts = append(parts, "\n*This analysis is based on the content of your uploaded document. Please verify information against current regulations and consult with relevant authorities for official guidance.*")
	} else if keywordSections := m.keywordSections(queryLower, primary.doc.ExtractedText, config); len(keywordSections) > 0 {
		parts = append(parts, "**Related information found:**")
		for _, section := range keywordSections {
			cleaned := strings.Join(strings.Fields(section), " ")
			parts = append(parts, fmt.Sprintf("• %s", utils.Truncate(cleaned, config.KeywordLength)))
		}
	} else {
		parts = append(parts, fmt.Sprintf("**Document Summary:** %s", summaryOrDefault(primary.doc.Summary)))
		parts = append(parts, "\n*The document doesn't contain specific information matching your query. Try asking about general topics covered in the document.*")
	}

	if len(relevant) > 1 {
		others := make([]string, 0, 2)
		for _, sd := range relevant[1:] {
			others = append(others, sd.doc.Name)
			if len(others) == 2 {
				break
			}
		}
		parts = append(parts, fmt.Sprintf("\n*Also found relevant information in: %s*", strings.Join(others, ", ")))
	}

	return strings.Join(parts, "\n")
}

// relevantSections returns content sections scoring above the semantic
// threshold, best first.
func (m *Matcher) relevantSections(queryLower, content string, config Config) []string {
	sections := splitter.Sections(content)
	if len(sections) == 0 {
		return nil
	}

	scores := m.scorer.SemanticRelevance(queryLower, sections)

	type scored struct {
		text  string
		score float64
	}
	var kept []scored
	for i, score := range scores {
		if score > config.SectionThreshold {
			kept = append(kept, scored{text: sections[i], score: score})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	result := make([]string, 0, len(kept))
	for _, s := range kept {
		result = append(result, s.text)
	}
	return result
}

// keywordSections is the overlap fallback when no section clears the
// semantic threshold.
func (m *Matcher) keywordSections(queryLower, content string, config Config) []string {
	sections := splitter.Sections(content)

	type scored struct {
		text  string
		score float64
	}
	var kept []scored
	for _, section := range sections {
		if score := m.scorer.TermOverlap(queryLower, section); score > 0 {
			kept = append(kept, scored{text: section, score: score})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	result := make([]string, 0, config.MaxKeywordSections)
	for _, s := range kept {
		result = append(result, s.text)
		if len(result) == config.MaxKeywordSections {
			break
		}
	}
	return result
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func summaryOrDefault(summary string) string {
	if summary == "" {
		return "No summary available"
	}
	return summary
}

func firstRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

func (m *Matcher) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
