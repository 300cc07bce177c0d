package qdrant

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/vectorsearch"

	"github.com/qdrant/go-client/qdrant"
)

// Provider implements vectorsearch.Provider on a Qdrant cluster over gRPC.
type Provider struct {
	client      *qdrant.Client
	embedder    embedding.EmbeddingProvider
	collections []string
	// namedVectors maps a collection to the vector name its points were
	// indexed under; collections absent from the map use the default
	// unnamed vector.
	namedVectors map[string]string
	dimension    int
	logger       *log.Logger
}

type Config struct {
	URL          string
	APIKey       string
	Collections  []string
	NamedVectors map[string]string
	Dimension    int
}

// NewProvider connects to Qdrant. urlStr is the HTTP endpoint
// ("http://host:6333"); the gRPC port is derived from it.
func NewProvider(cfg Config, embedder embedding.EmbeddingProvider, logger *log.Logger) (*Provider, error) {
	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC listens one port above the HTTP API.
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: parsedURL.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = 1536
	}

	return &Provider{
		client:       client,
		embedder:     embedder,
		collections:  cfg.Collections,
		namedVectors: cfg.NamedVectors,
		dimension:    dimension,
		logger:       logger,
	}, nil
}

var _ vectorsearch.Provider = &Provider{}

// Search embeds the query and fans out across collections. A collection
// that is missing or erroring is logged and skipped so one bad index never
// takes down retrieval.
func (p *Provider) Search(ctx context.Context, query string, collections []string, limit int) ([]vectorsearch.Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if len(collections) == 0 {
		collections = p.collections
	}
	if p.embedder == nil {
		return nil, fmt.Errorf("embedding provider not configured")
	}

	res, err := p.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	vector := embedding.FitToDimension(res.Embedding.Values, p.dimension)

	var hits []vectorsearch.Hit
	for _, collection := range collections {
		exists, err := p.client.CollectionExists(ctx, collection)
		if err != nil || !exists {
			p.logf("[WARN] Collection %s unavailable, skipping: %v", collection, err)
			continue
		}

		queryLimit := uint64(limit)
		req := &qdrant.QueryPoints{
			CollectionName: collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          &queryLimit,
			WithPayload:    qdrant.NewWithPayload(true),
		}
		if vectorName, ok := p.namedVectors[collection]; ok && vectorName != "" {
			using := vectorName
			req.Using = &using
		}

		points, err := p.client.Query(ctx, req)
		if err != nil {
			p.logf("[WARN] Search in collection %s failed, skipping: %v", collection, err)
			continue
		}

		for _, point := range points {
			payload := convertPayload(point.Payload)
			hits = append(hits, vectorsearch.Hit{
				ID:         pointID(point.Id),
				Score:      float64(point.Score),
				Collection: collection,
				Content:    ContentFromPayload(payload),
				Title:      titleFromPayload(payload),
				Source:     sourceFromPayload(payload),
				Metadata:   payload,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Collections reports availability of each configured collection.
func (p *Provider) Collections(ctx context.Context) []vectorsearch.CollectionInfo {
	infos := make([]vectorsearch.CollectionInfo, 0, len(p.collections))
	for _, collection := range p.collections {
		info := vectorsearch.CollectionInfo{Name: collection}
		exists, err := p.client.CollectionExists(ctx, collection)
		switch {
		case err != nil:
			info.Error = err.Error()
		case exists:
			info.Available = true
		default:
			info.Error = "collection not found"
		}
		infos = append(infos, info)
	}
	return infos
}

// Ping checks cluster reachability.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	return nil
}

func (p *Provider) logf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func convertPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	result := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

func convertValue(v *qdrant.Value) interface{} {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]interface{}, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayload(val.StructValue.Fields)
	default:
		return nil
	}
}

func titleFromPayload(payload map[string]interface{}) string {
	title, _ := firstString(payload, "title", "file_name")
	return title
}

func sourceFromPayload(payload map[string]interface{}) string {
	if source, ok := firstString(payload, "source", "file_path", "file_name"); ok {
		return source
	}
	return "Unknown"
}

func firstString(payload map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}
