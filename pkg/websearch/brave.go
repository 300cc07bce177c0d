package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const baseURL = "https://api.search.brave.com/res/v1/web/search"

// Result holds a single web search result.
type Result struct {
	Title       string
	URL         string
	Description string
	Age         string
}

// Config holds web search parameters.
type Config struct {
	APIKey     string
	MaxResults int
	Timeout    time.Duration
}

// DefaultConfig returns default web search configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:     apiKey,
		MaxResults: 10,
		Timeout:    10 * time.Second,
	}
}

// Client calls the Brave Search API.
type Client struct {
	config Config
	client *http.Client
}

func NewClient(config Config) *Client {
	if config.MaxResults <= 0 || config.MaxResults > 10 {
		config.MaxResults = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// --- Response structs (Internal to this package) ---

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Age         string `json:"age"`
		} `json:"results"`
	} `json:"web"`
}

// Search queries Brave for up to count results. focusOnRecent restricts
// results to the past year.
func (c *Client) Search(ctx context.Context, query string, count int, focusOnRecent bool) ([]Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("brave search api key not configured")
	}
	if count <= 0 || count > c.config.MaxResults {
		count = c.config.MaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("search_lang", "en")
	params.Set("country", "IN")
	params.Set("safesearch", "strict")
	params.Set("text_decorations", "false")
	params.Set("spellcheck", "true")
	if focusOnRecent {
		params.Set("freshness", "py")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var braveResp braveResponse
	if err := json.Unmarshal(bodyBytes, &braveResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]Result, 0, len(braveResp.Web.Results))
	for _, item := range braveResp.Web.Results {
		results = append(results, Result{
			Title:       item.Title,
			URL:         item.URL,
			Description: item.Description,
			Age:         item.Age,
		})
	}
	return results, nil
}

// Ping issues a single-result probe query to verify the API key works.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.Search(ctx, "test", 1, false)
	return err
}
