package factory

import (
	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/vectorsearch"
	"ca-assistant-be/pkg/vectorsearch/pgvector"
	"ca-assistant-be/pkg/vectorsearch/qdrant"
	"fmt"
	"log"

	"gorm.io/gorm"
)

type Config struct {
	Provider     string // "qdrant" | "pgvector"
	QdrantURL    string
	QdrantAPIKey string
	Collections  []string
	NamedVectors map[string]string
	Dimension    int
}

func NewSearchProvider(cfg Config, db *gorm.DB, embedder embedding.EmbeddingProvider, logger *log.Logger) (vectorsearch.Provider, error) {
	switch cfg.Provider {
	case "qdrant":
		return qdrant.NewProvider(qdrant.Config{
			URL:          cfg.QdrantURL,
			APIKey:       cfg.QdrantAPIKey,
			Collections:  cfg.Collections,
			NamedVectors: cfg.NamedVectors,
			Dimension:    cfg.Dimension,
		}, embedder, logger)
	case "pgvector":
		if db == nil {
			return nil, fmt.Errorf("pgvector provider requires a database connection")
		}
		return pgvector.NewProvider(db, embedder, cfg.Collections, cfg.Dimension, logger), nil
	default:
		return nil, fmt.Errorf("unsupported vector search provider: %s", cfg.Provider)
	}
}
