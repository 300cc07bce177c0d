package webgate

import (
	"context"
	"log"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"ca-assistant-be/pkg/store"
	"ca-assistant-be/pkg/websearch"
)

// Result scoring weights.
const (
	titleWeight       = 0.4
	descriptionWeight = 0.3
	domainBonus       = 0.3
)

// recencyCues trigger a web search regardless of knowledge base confidence.
var recencyCues = []string{"latest", "recent", "current", "new", "update"}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// authoritativeDomains get the relevance bonus: Indian statutory portals and
// established tax/finance publishers.
var authoritativeDomains = []string{
	"incometaxindia.gov.in",
	"mca.gov.in",
	"icai.org",
	"cleartax.in",
	"taxguru.in",
	"caclubindia.com",
	"moneycontrol.com",
	"economictimes.indiatimes.com",
}

var (
	legalContextTerms   = []string{"tax", "legal", "law", "regulation", "compliance", "ca", "chartered"}
	taxTopicTerms       = []string{"investment", "deduction", "income", "return", "filing"}
	corporateTopicTerms = []string{"company", "business", "corporate"}
)

// Searcher is the external web search capability.
type Searcher interface {
	Search(ctx context.Context, query string, count int, focusOnRecent bool) ([]websearch.Result, error)
	Configured() bool
}

// Gate decides when live web evidence is worth fetching and scores what
// comes back. All failures degrade to an empty, unused result set.
type Gate struct {
	searcher Searcher
	logger   *log.Logger
	now      func() time.Time
}

func NewGate(searcher Searcher, logger *log.Logger) *Gate {
	return &Gate{
		searcher: searcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Config encapsulates gating parameters
type Config struct {
	ConfidenceThreshold float64
	MaxResults          int
}

// DefaultConfig returns default gating configuration
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.4,
		MaxResults:          3,
	}
}

// ShouldSearch reports whether web evidence is needed: low confidence in the
// evidence gathered so far, or the query asks about something recent.
func (g *Gate) ShouldSearch(query string, currentConfidence float64, config Config) bool {
	if currentConfidence < config.ConfidenceThreshold {
		return true
	}

	queryLower := strings.ToLower(query)
	for _, cue := range recencyCues {
		if strings.Contains(queryLower, cue) {
			return true
		}
	}

	cutoff := g.now().Year() - 1
	for _, match := range yearPattern.FindAllString(queryLower, -1) {
		if year, err := strconv.Atoi(match); err == nil && year >= cutoff {
			return true
		}
	}
	return false
}

// Search runs the enhanced query through the search capability and returns
// scored results, best first. Used stays false when the capability is
// missing or the call fails; the error never reaches the caller.
func (g *Gate) Search(ctx context.Context, query string, config Config) store.WebResultSet {
	if g.searcher == nil || !g.searcher.Configured() {
		g.logf("[WARN] Web search not configured, skipping")
		return store.WebResultSet{}
	}

	enhanced := EnhanceQuery(query)
	if enhanced != query {
		g.logf("[DEBUG] Enhanced web query: %q", enhanced)
	}

	raw, err := g.searcher.Search(ctx, enhanced, config.MaxResults, true)
	if err != nil {
		g.logf("[WARN] Web search failed: %v", err)
		return store.WebResultSet{}
	}

	results := make([]store.WebResult, 0, len(raw))
	for _, item := range raw {
		domain := extractDomain(item.URL)
		results = append(results, store.WebResult{
			Title:       item.Title,
			URL:         item.URL,
			Description: item.Description,
			Domain:      domain,
			Age:         item.Age,
			Relevance:   relevanceScore(query, item, domain),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	return store.WebResultSet{Used: true, Results: results}
}

// EnhanceQuery appends Indian legal/tax context to queries that lack it, so
// generic questions surface CA-relevant pages.
func EnhanceQuery(query string) string {
	queryLower := strings.ToLower(query)
	if containsAny(queryLower, legalContextTerms) {
		return query
	}
	switch {
	case containsAny(queryLower, taxTopicTerms):
		return query + " tax law India"
	case containsAny(queryLower, corporateTopicTerms):
		return query + " corporate law India"
	default:
		return query + " chartered accountant India"
	}
}

// relevanceScore weighs query-word overlap in the title and description plus
// an authoritative-domain bonus, capped at 1.0.
func relevanceScore(query string, item websearch.Result, domain string) float64 {
	queryWords := wordSet(strings.ToLower(query))

	score := float64(overlapCount(queryWords, wordSet(strings.ToLower(item.Title)))) * titleWeight
	score += float64(overlapCount(queryWords, wordSet(strings.ToLower(item.Description)))) * descriptionWeight

	for _, auth := range authoritativeDomains {
		if strings.Contains(domain, auth) {
			score += domainBonus
			break
		}
	}

	return math.Min(score, 1.0)
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return parsed.Host
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

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func (g *Gate) logf(format string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}
