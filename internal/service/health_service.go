package service

import (
	"context"
	"time"

	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/pkg/database"
	"ca-assistant-be/pkg/llm"
	"ca-assistant-be/pkg/vectorsearch"
	"ca-assistant-be/pkg/websearch"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
	Collections(ctx context.Context) *dto.CollectionsResponse
}

// healthService probes every capability the pipeline can run with. Optional
// backends report not_configured rather than error so a minimal deployment
// still shows as healthy.
type healthService struct {
	completion llm.LLMProvider
	vector     vectorsearch.Provider
	web        *websearch.Client
	db         *gorm.DB
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewHealthService(
	completion llm.LLMProvider,
	vector vectorsearch.Provider,
	web *websearch.Client,
	db *gorm.DB,
	rdb *redis.Client,
	log logger.ILogger,
) IHealthService {
	return &healthService{
		completion: completion,
		vector:     vector,
		web:        web,
		db:         db,
		rdb:        rdb,
		logger:     log,
	}
}

func (hs *healthService) Check(ctx context.Context) *dto.HealthResponse {
	services := map[string]string{
		"completion":    hs.completionStatus(),
		"vector_search": hs.vectorStatus(ctx),
		"web_search":    hs.webStatus(),
		"database":      hs.databaseStatus(ctx),
		"redis":         hs.redisStatus(ctx),
	}

	status := "healthy"
	for _, s := range services {
		if s == dto.StatusError {
			status = "degraded"
			break
		}
	}

	return &dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}
}

func (hs *healthService) Collections(ctx context.Context) *dto.CollectionsResponse {
	res := &dto.CollectionsResponse{Collections: []dto.CollectionStatusDTO{}}
	if hs.vector == nil {
		return res
	}
	for _, info := range hs.vector.Collections(ctx) {
		res.Collections = append(res.Collections, dto.CollectionStatusDTO{
			Name:      info.Name,
			Available: info.Available,
			Error:     info.Error,
		})
	}
	return res
}

func (hs *healthService) completionStatus() string {
	if hs.completion == nil {
		return dto.StatusNotConfigured
	}
	return dto.StatusHealthy
}

func (hs *healthService) vectorStatus(ctx context.Context) string {
	if hs.vector == nil {
		return dto.StatusNotConfigured
	}
	if err := hs.vector.Ping(ctx); err != nil {
		hs.logger.Warn("HealthService", "Vector search ping failed", map[string]interface{}{"error": err.Error()})
		return dto.StatusError
	}
	return dto.StatusHealthy
}

// webStatus does not probe the search API; a ping would spend request quota
// on every health check.
func (hs *healthService) webStatus() string {
	if hs.web == nil || !hs.web.Configured() {
		return dto.StatusNotConfigured
	}
	return dto.StatusHealthy
}

func (hs *healthService) databaseStatus(ctx context.Context) string {
	if hs.db == nil {
		return dto.StatusNotConfigured
	}
	if err := database.Ping(ctx, hs.db); err != nil {
		hs.logger.Warn("HealthService", "Database ping failed", map[string]interface{}{"error": err.Error()})
		return dto.StatusError
	}
	return dto.StatusHealthy
}

func (hs *healthService) redisStatus(ctx context.Context) string {
	if hs.rdb == nil {
		return dto.StatusNotConfigured
	}
	if err := hs.rdb.Ping(ctx).Err(); err != nil {
		hs.logger.Warn("HealthService", "Redis ping failed", map[string]interface{}{"error": err.Error()})
		return dto.StatusError
	}
	return dto.StatusHealthy
}
