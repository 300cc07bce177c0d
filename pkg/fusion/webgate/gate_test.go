package webgate

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"ca-assistant-be/pkg/websearch"
)

type stubSearcher struct {
	results    []websearch.Result
	err        error
	configured bool
	lastQuery  string
	lastCount  int
	lastRecent bool
}

func (s *stubSearcher) Search(ctx context.Context, query string, count int, focusOnRecent bool) ([]websearch.Result, error) {
	s.lastQuery = query
	s.lastCount = count
	s.lastRecent = focusOnRecent
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubSearcher) Configured() bool {
	return s.configured
}

func newTestGate(searcher Searcher) *Gate {
	gate := NewGate(searcher, log.New(io.Discard, "", 0))
	gate.now = func() time.Time {
		return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	}
	return gate
}

func TestShouldSearch(t *testing.T) {
	gate := newTestGate(&stubSearcher{configured: true})
	config := DefaultConfig()

	tests := []struct {
		name       string
		query      string
		confidence float64
		expected   bool
	}{
		{"recency cue overrides high confidence", "latest GST rate", 0.9, true},
		{"confident definitional query skips web", "define depreciation", 0.9, false},
		{"low confidence triggers search", "define depreciation", 0.2, true},
		{"boundary confidence does not trigger", "define depreciation", 0.4, false},
		{"current year triggers search", "income tax slab 2025", 0.9, true},
		{"previous year triggers search", "income tax slab 2024", 0.9, true},
		{"old year alone does not trigger", "finance act 2019 provisions", 0.9, false},
		{"update keyword triggers search", "TDS rate update", 0.9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.ShouldSearch(tt.query, tt.confidence, config)
			if got != tt.expected {
				t.Errorf("ShouldSearch(%q, %v) = %v, want %v", tt.query, tt.confidence, got, tt.expected)
			}
		})
	}
}

func TestEnhanceQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"legal context left alone", "gst tax rate", "gst tax rate"},
		{"investment topic gets tax context", "best investment options", "best investment options tax law India"},
		{"corporate topic gets corporate context", "private company registration", "private company registration corporate law India"},
		{"generic query gets ca context", "audit checklist", "audit checklist chartered accountant India"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceQuery(tt.query)
			if got != tt.expected {
				t.Errorf("EnhanceQuery(%q) = %q, want %q", tt.query, got, tt.expected)
			}
		})
	}
}

func TestSearchScoresAndSortsResults(t *testing.T) {
	searcher := &stubSearcher{
		configured: true,
		results: []websearch.Result{
			{Title: "unrelated blog post", URL: "https://example.com/post", Description: "cooking tips"},
			{Title: "GST return due dates", URL: "https://cleartax.in/gst", Description: "GST return filing due dates explained"},
		},
	}
	gate := newTestGate(searcher)

	set := gate.Search(context.Background(), "GST return due dates", DefaultConfig())

	if !set.Used {
		t.Fatal("expected Used=true on successful search")
	}
	if len(set.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(set.Results))
	}
	if set.Results[0].Domain != "cleartax.in" {
		t.Errorf("expected authoritative result first, got %q", set.Results[0].Domain)
	}
	if set.Results[0].Relevance != 1.0 {
		t.Errorf("expected capped relevance 1.0, got %v", set.Results[0].Relevance)
	}
	if set.Results[1].Relevance != 0 {
		t.Errorf("expected zero relevance for unrelated result, got %v", set.Results[1].Relevance)
	}
	if !searcher.lastRecent {
		t.Error("expected recency-focused search")
	}
	if searcher.lastCount != 3 {
		t.Errorf("expected default result count 3, got %d", searcher.lastCount)
	}
}

func TestSearchSoftFailsOnError(t *testing.T) {
	gate := newTestGate(&stubSearcher{configured: true, err: errors.New("rate limited")})

	set := gate.Search(context.Background(), "latest tax news", DefaultConfig())

	if set.Used {
		t.Error("expected Used=false on search failure")
	}
	if len(set.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(set.Results))
	}
}

func TestSearchSkipsWhenNotConfigured(t *testing.T) {
	searcher := &stubSearcher{configured: false}
	gate := newTestGate(searcher)

	set := gate.Search(context.Background(), "latest tax news", DefaultConfig())

	if set.Used {
		t.Error("expected Used=false when not configured")
	}
	if searcher.lastQuery != "" {
		t.Error("expected no search call when not configured")
	}
}

func TestSearchEnhancesQuery(t *testing.T) {
	searcher := &stubSearcher{configured: true}
	gate := newTestGate(searcher)

	gate.Search(context.Background(), "audit checklist", DefaultConfig())

	if searcher.lastQuery != "audit checklist chartered accountant India" {
		t.Errorf("expected enhanced query, got %q", searcher.lastQuery)
	}
}
