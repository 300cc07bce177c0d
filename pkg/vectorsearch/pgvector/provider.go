package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/vectorsearch"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KnowledgeChunk is one indexed passage row. The table is populated by an
// external ingestion process; this provider only reads it.
type KnowledgeChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection     string          `gorm:"type:varchar(128);not null;index"`
	Title          string          `gorm:"type:text"`
	Source         string          `gorm:"type:text"`
	Content        string          `gorm:"type:text"`
	Payload        datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}

// Provider implements vectorsearch.Provider on a Postgres table with a
// pgvector column.
type Provider struct {
	db          *gorm.DB
	embedder    embedding.EmbeddingProvider
	collections []string
	dimension   int
	logger      *log.Logger
}

func NewProvider(db *gorm.DB, embedder embedding.EmbeddingProvider, collections []string, dimension int, logger *log.Logger) *Provider {
	if dimension <= 0 {
		dimension = 1536
	}
	return &Provider{
		db:          db,
		embedder:    embedder,
		collections: collections,
		dimension:   dimension,
		logger:      logger,
	}
}

var _ vectorsearch.Provider = &Provider{}

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
	queryVector := pgvector.NewVector(embedding.FitToDimension(res.Embedding.Values, p.dimension))

	// Cosine distance <=> is 1 - similarity, so similarity = 1 - distance.
	type row struct {
		KnowledgeChunk
		Similarity float64
	}
	var rows []row

	err = p.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("collection IN ?", collections).
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}

	hits := make([]vectorsearch.Hit, 0, len(rows))
	for _, r := range rows {
		var metadata map[string]interface{}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &metadata); err != nil {
				p.logf("[WARN] Chunk %s payload unreadable: %v", r.Id, err)
			}
		}
		hits = append(hits, vectorsearch.Hit{
			ID:         r.Id.String(),
			Score:      r.Similarity,
			Collection: r.Collection,
			Content:    r.Content,
			Title:      r.Title,
			Source:     r.Source,
			Metadata:   metadata,
		})
	}
	return hits, nil
}

// Collections reports which configured collections actually hold chunks.
func (p *Provider) Collections(ctx context.Context) []vectorsearch.CollectionInfo {
	counts := make(map[string]int64, len(p.collections))
	type row struct {
		Collection string
		Total      int64
	}
	var rows []row
	err := p.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("collection, count(*) as total").
		Group("collection").
		Scan(&rows).Error
	if err != nil {
		p.logf("[WARN] Collection stats query failed: %v", err)
	}
	for _, r := range rows {
		counts[r.Collection] = r.Total
	}

	infos := make([]vectorsearch.CollectionInfo, 0, len(p.collections))
	for _, collection := range p.collections {
		info := vectorsearch.CollectionInfo{Name: collection}
		switch {
		case err != nil:
			info.Error = err.Error()
		case counts[collection] > 0:
			info.Available = true
		default:
			info.Error = "no chunks indexed"
		}
		infos = append(infos, info)
	}
	return infos
}

func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *Provider) logf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
