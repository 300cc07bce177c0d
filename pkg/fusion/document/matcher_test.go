package document

import (
	"io"
	"log"
	"strings"
	"testing"

	"ca-assistant-be/pkg/fusion/scorer"
	"ca-assistant-be/pkg/store"
)

func newTestMatcher() *Matcher {
	logger := log.New(io.Discard, "", 0)
	return NewMatcher(scorer.NewScorer(nil, logger), logger)
}

func TestMatchNoDocuments(t *testing.T) {
	match := newTestMatcher().Match("summarize this", nil, DefaultConfig())
	if match.Relevant {
		t.Error("expected no match without documents")
	}
}

func TestMatchDropsIrrelevantDocuments(t *testing.T) {
	docs := []store.UploadedDocument{
		{ID: "1", Name: "recipes.txt", ExtractedText: "Pasta cooking instructions with tomato sauce."},
	}

	match := newTestMatcher().Match("explain quantum mechanics", docs, DefaultConfig())
	if match.Relevant {
		t.Errorf("expected no match for unrelated query, got fragment:\n%s", match.AnswerFragment)
	}
}

func TestMatchForceIncludesFirstDocumentForGenericQuery(t *testing.T) {
	docs := []store.UploadedDocument{
		{
			ID:            "1",
			Name:          "report.pdf",
			ExtractedText: "Annual revenue figures for fiscal 2023. Totals compiled by branch office accountants.",
			Summary:       "Revenue report for 2023.",
		},
	}

	match := newTestMatcher().Match("what does it say", docs, DefaultConfig())

	if !match.Relevant {
		t.Fatal("expected forced match for generic document query")
	}
	if match.MaxRelevance != 0.5 {
		t.Errorf("expected assumed relevance 0.5, got %v", match.MaxRelevance)
	}
	if !strings.Contains(match.AnswerFragment, "**Document Summary:** Revenue report for 2023.") {
		t.Errorf("expected summary fallback fragment, got:\n%s", match.AnswerFragment)
	}
	if len(match.Citations) != 1 || match.Citations[0].Kind != store.CitationUploadedDocument {
		t.Errorf("expected one uploaded_document citation, got %+v", match.Citations)
	}
}

func TestMatchForcedIncludeWithEmptyContent(t *testing.T) {
	docs := []store.UploadedDocument{
		{ID: "1", Name: "blank.pdf", ExtractedText: "   "},
	}

	match := newTestMatcher().Match("summarize the document", docs, DefaultConfig())

	if !match.Relevant {
		t.Fatal("expected forced match for summarize query")
	}
	if !strings.Contains(match.AnswerFragment, "appears to be empty") {
		t.Errorf("expected empty-document fragment, got:\n%s", match.AnswerFragment)
	}
}

func TestMatchRanksPrimaryAndNamesSecondaries(t *testing.T) {
	docs := []store.UploadedDocument{
		{ID: "low", Name: "quarter.txt", ExtractedText: "pay statement for the quarter ending in march review"},
		{ID: "high", Name: "payroll.txt", ExtractedText: "salary compensation pay wage earning income remuneration stipend revenue"},
		{ID: "mid", Name: "figures.txt", ExtractedText: "salary income figures for the department administration"},
	}

	match := newTestMatcher().Match("salary income", docs, DefaultConfig())

	if !match.Relevant {
		t.Fatal("expected match")
	}
	if !strings.Contains(match.AnswerFragment, "## Document Analysis: payroll.txt") {
		t.Errorf("expected highest scoring document as primary, got:\n%s", match.AnswerFragment)
	}
	if !strings.Contains(match.AnswerFragment, "*Also found relevant information in: figures.txt, quarter.txt*") {
		t.Errorf("expected secondary documents in footer, got:\n%s", match.AnswerFragment)
	}
	if len(match.Citations) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(match.Citations))
	}
	if match.Citations[0].Label != "payroll.txt" || match.Citations[1].Label != "figures.txt" || match.Citations[2].Label != "quarter.txt" {
		t.Errorf("citations not ordered by relevance: %+v", match.Citations)
	}
	for i := 1; i < len(match.Citations); i++ {
		if match.Citations[i].RelevanceScore > match.Citations[i-1].RelevanceScore {
			t.Errorf("citation scores not descending: %+v", match.Citations)
		}
	}
}

func TestMatchExtractsRelevantSections(t *testing.T) {
	content := strings.Join([]string{
		"salary compensation pay wage earning income remuneration stipend revenue details",
		"Unrelated paragraph about office furniture and seating arrangements today.",
	}, "\n\n")
	docs := []store.UploadedDocument{
		{ID: "1", Name: "payroll.xlsx", ExtractedText: content, Summary: "Payroll data."},
	}

	match := newTestMatcher().Match("salary income", docs, DefaultConfig())

	if !match.Relevant {
		t.Fatal("expected match")
	}
	if !strings.Contains(match.AnswerFragment, "### Key Information Found:") {
		t.Errorf("expected section listing, got:\n%s", match.AnswerFragment)
	}
	if !strings.Contains(match.AnswerFragment, "**1.** salary compensation") {
		t.Errorf("expected top section first, got:\n%s", match.AnswerFragment)
	}
	if strings.Contains(match.AnswerFragment, "office furniture") {
		t.Errorf("irrelevant section leaked into fragment:\n%s", match.AnswerFragment)
	}
	if !strings.Contains(match.AnswerFragment, "• **Relevant sections found:** 1") {
		t.Errorf("expected section count in analysis summary, got:\n%s", match.AnswerFragment)
	}
	if !strings.Contains(match.AnswerFragment, "• **Document summary:** Payroll data....") {
		t.Errorf("expected document summary bullet, got:\n%s", match.AnswerFragment)
	}
}

func TestMatchKeywordFallbackSections(t *testing.T) {
	docs := []store.UploadedDocument{
		{
			ID:            "1",
			Name:          "notes.txt",
			ExtractedText: "The salary figures appear alongside unrelated administrative notes here.",
		},
	}

	match := newTestMatcher().Match("salary", docs, DefaultConfig())

	if !match.Relevant {
		t.Fatal("expected match")
	}
	if !strings.Contains(match.AnswerFragment, "**Related information found:**") {
		t.Errorf("expected keyword fallback listing, got:\n%s", match.AnswerFragment)
	}
	if !strings.Contains(match.AnswerFragment, "• The salary figures appear") {
		t.Errorf("expected keyword section bullet, got:\n%s", match.AnswerFragment)
	}
}

func TestMatchTruncatesLongSections(t *testing.T) {
	long := "salary compensation pay wage earning income remuneration stipend revenue " + strings.Repeat("filler words padding content ", 30)
	docs := []store.UploadedDocument{
		{ID: "1", Name: "big.txt", ExtractedText: long},
	}

	config := DefaultConfig()
	match := newTestMatcher().Match("salary income", docs, config)

	if !match.Relevant {
		t.Fatal("expected match")
	}
	found := false
	for _, line := range strings.Split(match.AnswerFragment, "\n") {
		if strings.HasPrefix(line, "**1.**") {
			found = true
			body := strings.TrimPrefix(line, "**1.** ")
			if len([]rune(body)) > config.SectionLength+len("...") {
				t.Errorf("section not truncated, length %d", len([]rune(body)))
			}
			if !strings.HasSuffix(body, "...") {
				t.Errorf("expected ellipsis on truncated section: %q", body)
			}
		}
	}
	if !found {
		t.Errorf("expected a numbered section in fragment:\n%s", match.AnswerFragment)
	}
}
