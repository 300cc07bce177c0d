package knowledge

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"ca-assistant-be/pkg/store"
	"ca-assistant-be/pkg/vectorsearch"
)

// Retriever pulls scored passages from the indexed knowledge base.
type Retriever struct {
	provider vectorsearch.Provider
	logger   *log.Logger
}

// NewRetriever creates a knowledge base retriever over a search backend.
func NewRetriever(provider vectorsearch.Provider, logger *log.Logger) *Retriever {
	return &Retriever{
		provider: provider,
		logger:   logger,
	}
}

// Config encapsulates retrieval parameters
type Config struct {
	MinScoreThreshold float64
	MaxDocs           int
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		MinScoreThreshold: 0.01, // Lowered for better recall
		MaxDocs:           5,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// PreprocessQuery trims, collapses whitespace runs and lowercases a query.
func PreprocessQuery(query string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(query), " "))
}

// Retrieve runs vector search across all configured collections and returns
// at most config.MaxDocs passages at or above the score threshold, sorted by
// score descending. Ties keep backend order, so earlier collections win.
func (r *Retriever) Retrieve(ctx context.Context, query string, config Config) ([]store.Passage, error) {
	return r.retrieve(ctx, query, nil, config)
}

// RetrieveFromCollection restricts the search to a single named collection.
func (r *Retriever) RetrieveFromCollection(ctx context.Context, query, collection string, config Config) ([]store.Passage, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	return r.retrieve(ctx, query, []string{collection}, config)
}

func (r *Retriever) retrieve(ctx context.Context, query string, collections []string, config Config) ([]store.Passage, error) {
	cleaned := PreprocessQuery(query)

	// Overfetch so threshold filtering can still fill MaxDocs.
	hits, err := r.provider.Search(ctx, cleaned, collections, config.MaxDocs*2)
	if err != nil {
		r.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	r.logger.Printf("[DEBUG] Raw search results: %d passages", len(hits))

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	passages := make([]store.Passage, 0, config.MaxDocs)
	for _, hit := range hits {
		if hit.Score < config.MinScoreThreshold {
			continue
		}
		passages = append(passages, store.Passage{
			Text:       hit.Content,
			SourceID:   hit.Source,
			Collection: hit.Collection,
			Title:      hit.Title,
			Score:      hit.Score,
			Metadata:   hit.Metadata,
		})
		if len(passages) == config.MaxDocs {
			break
		}
	}

	r.logger.Printf("[DEBUG] Passages above threshold: %d", len(passages))

	return passages, nil
}

// ContextFromPassages formats retrieved passages into a numbered context block
// for completion prompts.
func ContextFromPassages(passages []store.Passage) string {
	if len(passages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(passages))
	for i, passage := range passages {
		content := strings.TrimSpace(passage.Text)
		if content == "" {
			continue
		}
		header := fmt.Sprintf("Document %d", i+1)
		if passage.Title != "" {
			header += fmt.Sprintf(" - %s", passage.Title)
		}
		if passage.SourceID != "" {
			header += fmt.Sprintf(" (Source: %s)", passage.SourceID)
		}
		parts = append(parts, fmt.Sprintf("%s:\n%s\n", header, content))
	}
	return strings.Join(parts, "\n")
}

var taxKeywords = []string{"tax", "taxes", "taxation", "deduction", "irs", "income", "filing", "return"}

// PreferredCollection suggests a collection for tax-heavy queries. Empty
// means search everything.
func PreferredCollection(query, taxCollection string) string {
	queryLower := strings.ToLower(query)
	for _, keyword := range taxKeywords {
		if strings.Contains(queryLower, keyword) {
			return taxCollection
		}
	}
	return ""
}
