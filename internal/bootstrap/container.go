package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"ca-assistant-be/internal/config"
	"ca-assistant-be/internal/controller"
	"ca-assistant-be/internal/handler"
	"ca-assistant-be/internal/pkg/logger"
	"ca-assistant-be/internal/repository"
	"ca-assistant-be/internal/repository/memory"
	redisrepo "ca-assistant-be/internal/repository/redis"
	"ca-assistant-be/internal/service"
	"ca-assistant-be/internal/websocket"
	"ca-assistant-be/pkg/embedding"
	"ca-assistant-be/pkg/embedding/jina"
	"ca-assistant-be/pkg/extract"
	"ca-assistant-be/pkg/fusion"
	"ca-assistant-be/pkg/fusion/document"
	"ca-assistant-be/pkg/fusion/knowledge"
	"ca-assistant-be/pkg/fusion/scorer"
	"ca-assistant-be/pkg/fusion/webgate"
	"ca-assistant-be/pkg/llm"
	"ca-assistant-be/pkg/llm/factory"
	vsfactory "ca-assistant-be/pkg/vectorsearch/factory"
	"ca-assistant-be/pkg/websearch"

	pktNats "ca-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	SessionController  controller.ISessionController
	HealthController   controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	fusionLogger := newFusionLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else if cfg.Keys.OpenAI != "" {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	} else {
		log.Printf("[WARN] No OpenAI API key, semantic scoring falls back to keyword overlap")
	}

	// Initialize LLM Provider based on Config
	completionKey := cfg.Keys.OpenAI
	if cfg.Ai.LLMProvider == "huggingface" {
		completionKey = cfg.Keys.HuggingFace
	}

	var llmProvider llm.LLMProvider
	if cfg.Ai.LLMProvider == "openai" && completionKey == "" {
		log.Printf("[WARN] No OpenAI API key, answers stay extractive (no refinement, no summary rewriting)")
	} else {
		var err error
		llmProvider, err = factory.NewLLMProvider(
			cfg.Ai.LLMProvider,
			cfg.Ai.LLMModel,
			cfg.Ai.OllamaBaseURL,
			completionKey,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// Initialize Vector Search Provider
	vectorProvider, err := vsfactory.NewSearchProvider(vsfactory.Config{
		Provider:     cfg.Vector.Backend,
		QdrantURL:    cfg.Vector.QdrantURL,
		QdrantAPIKey: cfg.Vector.QdrantAPIKey,
		Collections:  cfg.Vector.Collections,
		NamedVectors: cfg.Vector.NamedVectors,
		Dimension:    cfg.Vector.Dimension,
	}, db, embeddingProvider, fusionLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Vector Search Provider: %v", err)
	}
	log.Printf("[INFO] Using Vector Search Provider: %s", cfg.Vector.Backend)

	// Web Search Client
	webClient := websearch.NewClient(websearch.Config{
		APIKey:     cfg.Keys.Brave,
		MaxResults: cfg.Web.MaxResults,
		Timeout:    cfg.Web.Timeout,
	})
	if webClient.Configured() {
		log.Printf("[INFO] Web search enabled (Brave)")
	} else {
		log.Printf("[INFO] Web search disabled, no API key")
	}

	// 4. Fusion Pipeline
	sc := scorer.NewScorer(embeddingProvider, fusionLogger)
	matcher := document.NewMatcher(sc, fusionLogger)
	retriever := knowledge.NewRetriever(vectorProvider, fusionLogger)
	gate := webgate.NewGate(webClient, fusionLogger)

	var refiner *fusion.Refiner
	if llmProvider != nil {
		refiner = fusion.NewRefiner(llmProvider, fusionLogger)
	}
	engine := fusion.NewEngine(matcher, retriever, gate, refiner, fusionLogger, fusion.DefaultConfig())

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis (optional, enables cross-instance progress fanout and sessions)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// Session Storage
	var sessionRepo repository.SessionRepository
	if cfg.Session.Backend == "redis" && rdb != nil {
		sessionRepo = redisrepo.NewSessionRepository(rdb)
		log.Printf("[INFO] Using Session Storage: REDIS")
	} else {
		if cfg.Session.Backend == "redis" {
			log.Printf("[WARN] Redis session backend requested but Redis is unavailable, using memory")
		}
		sessionRepo = memory.NewSessionRepository()
		log.Printf("[INFO] Using Session Storage: MEMORY")
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Background Workers
	publisherService := service.NewPublisherService(cfg.Ai.SummaryTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.SummaryTopic,
		sessionRepo,
		llmProvider,
		natsPub,
	)

	progressService := service.NewProgressService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go progressService.Start()
	}

	// 7. Services
	processor := extract.NewProcessor(0)

	chatService := service.NewChatService(engine, sessionRepo, natsPub, wsHub, sysLogger)
	documentService := service.NewDocumentService(processor, sessionRepo, natsPub, publisherService, sysLogger)
	sessionService := service.NewSessionService(sessionRepo, sysLogger)
	healthService := service.NewHealthService(llmProvider, vectorProvider, webClient, db, rdb, sysLogger)

	// 8. Handlers & Controllers
	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		SessionController:  controller.NewSessionController(sessionService),
		HealthController:   controller.NewHealthController(healthService),

		ConsumerService: consumerService,

		ProgressHandler: progressHandler,
		WebSocketHub:    wsHub,
	}
}

// newFusionLogger writes pipeline traces to their own file so answer
// scoring stays readable next to the request log.
func newFusionLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "fusion.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[FUSION] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
