package bootstrap

import (
	"log"
	"time"

	"rag-assistant-be/internal/config"
	"rag-assistant-be/internal/controller"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/internal/service"
	"rag-assistant-be/pkg/chunker"
	"rag-assistant-be/pkg/decision"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/extract"
	"rag-assistant-be/pkg/llm/factory"
	"rag-assistant-be/pkg/llm/gateway"

	pktNats "rag-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	ModeController     controller.IModeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	}

	llmGateway := buildGateway(cfg)

	// In-memory session storage
	sessionRepo := memory.NewSessionRepository()

	// NATS lifecycle events (best-effort, nil publisher disables them)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 4. Ingestion pipeline
	extractor := extract.New()
	splitter := chunker.NewSplitter(
		cfg.Retrieval.ChunkSize,
		cfg.Retrieval.OverlapWords,
		cfg.Retrieval.MinTailChars,
	)

	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	ingestionService := service.NewIngestionService(
		uowFactory,
		extractor,
		splitter,
		embeddingProvider,
		natsPub,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		ingestionService,
	)

	// 5. Routing engine
	contextChecker := service.NewVectorContextChecker(
		uowFactory,
		embeddingProvider,
		cfg.Retrieval.ContextThreshold,
	)
	engine := decision.NewEngine(log.Default())
	if err := engine.Register(decision.NewMainTree(contextChecker)); err != nil {
		log.Fatalf("[FATAL] Failed to register main decision tree: %v", err)
	}

	// 6. Services
	documentService := service.NewDocumentService(uowFactory, publisherService)
	chatService := service.NewChatService(
		uowFactory,
		engine,
		llmGateway,
		embeddingProvider,
		sessionRepo,
		cfg.Retrieval.DefaultMode,
	)
	modeService := service.NewModeService()

	sysLogger.Info("bootstrap", "container initialized", map[string]interface{}{
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"llm_provider":       cfg.Ai.LLMProvider,
		"ingest_topic":       cfg.App.IngestTopic,
	})

	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		ChatController:     controller.NewChatController(chatService),
		ModeController:     controller.NewModeController(modeService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}

// buildGateway wires the primary LLM backend and, when configured, a
// fallback backend behind the retry gateway.
func buildGateway(cfg *config.Config) *gateway.Gateway {
	retry := gateway.RetryConfig{
		MaxAttempts:  cfg.Ai.RetryMaxAttempts,
		InitialDelay: time.Duration(cfg.Ai.RetryInitialDelayMs) * time.Millisecond,
	}

	g := gateway.New(cfg.Ai.LLMProvider, cfg.Ai.LLMProvider, retry, log.Default())

	primary, err := factory.NewProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL, cfg.Keys.GoogleGemini)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	g.Register(cfg.Ai.LLMProvider, primary)
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	if cfg.Ai.FallbackProvider != "" && cfg.Ai.FallbackProvider != cfg.Ai.LLMProvider {
		secondary, err := factory.NewProvider(cfg.Ai.FallbackProvider, cfg.Ai.FallbackModel, cfg.Ai.OllamaBaseURL, cfg.Keys.GoogleGemini)
		if err != nil {
			log.Printf("[WARN] Failed to initialize fallback LLM Provider: %v", err)
		} else {
			g.Register(cfg.Ai.FallbackProvider, secondary)
			g.Pair(cfg.Ai.LLMProvider, cfg.Ai.FallbackProvider)
			log.Printf("[INFO] Using LLM Fallback: %s (%s)", cfg.Ai.FallbackProvider, cfg.Ai.FallbackModel)
		}
	}

	return g
}
