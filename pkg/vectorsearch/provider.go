package vectorsearch

import "context"

// Hit is one raw result returned by a vector index.
type Hit struct {
	ID         string
	Score      float64
	Collection string
	Content    string
	Title      string
	Source     string
	Metadata   map[string]interface{}
}

// CollectionInfo reports availability of one configured collection.
type CollectionInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// Provider is the vector search capability. Search embeds the query text
// itself and fans out over the given collections (its configured defaults
// when the slice is empty); unavailable collections are skipped, never
// fatal. Results come back merged and sorted by score descending, at most
// limit entries.
type Provider interface {
	Search(ctx context.Context, query string, collections []string, limit int) ([]Hit, error)
	Collections(ctx context.Context) []CollectionInfo
	Ping(ctx context.Context) error
}
