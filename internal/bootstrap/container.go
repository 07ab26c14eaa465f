package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"mindcare-be/internal/config"
	"mindcare-be/internal/constant"
	"mindcare-be/internal/controller"
	"mindcare-be/internal/pkg/logger"
	"mindcare-be/internal/pkg/mailer"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/internal/repository/implementation"
	"mindcare-be/internal/repository/memory"
	"mindcare-be/internal/repository/unitofwork"
	"mindcare-be/internal/service"
	"mindcare-be/internal/websocket"
	"mindcare-be/pkg/database"
	"mindcare-be/pkg/emotion"
	embeddingFactory "mindcare-be/pkg/embedding/factory"
	"mindcare-be/pkg/knowledge"
	llmFactory "mindcare-be/pkg/llm/factory"
	pktNats "mindcare-be/pkg/nats"
	"mindcare-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const crisisTopic = "crisis_events"

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	ChatController      controller.IChatController
	KnowledgeController controller.IKnowledgeController
	ResourceController  controller.IResourceController

	// Background Services (Exposed for main.go to run)
	ConsumerService    service.IConsumerService
	CrisisAlertService service.ICrisisAlertService
	Retriever          *rag.Retriever

	WebSocketHub *websocket.Hub
	Logger       logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	var forwarder service.EventForwarder
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	rdb := newRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()
	c.WebSocketHub = wsHub

	// 4. AI components
	embedder, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Options{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  cfg.EmbeddingBaseURL(),
		APIKey:   cfg.EmbeddingAPIKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := llmFactory.NewLLMProvider(llmFactory.Config{
		Provider:       cfg.Ai.LLMProvider,
		Model:          cfg.Ai.LLMModel,
		BaseURL:        llmBaseURL(cfg),
		APIKey:         cfg.LLMAPIKey(),
		Temperature:    cfg.Ai.LLMTemperature,
		MaxTokens:      cfg.Ai.LLMMaxTokens,
		RequestsPerSec: cfg.Ai.LLMRequestsPerSec,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	corpus, err := knowledge.Load(cfg.Rag.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("knowledge corpus: %w", err)
	}

	var store rag.VectorStore
	switch cfg.Rag.IndexBackend {
	case "pgvector":
		store = implementation.NewPgVectorStore(implementation.NewKnowledgeRepository(db))
	default:
		store = rag.NewMemoryStore()
	}
	retriever := rag.NewRetriever(embedder, store, corpus, cfg.Rag.TopK)
	c.Retriever = retriever

	classifier := newClassifier(cfg, sysLogger)

	// 5. Services
	denylist := memory.NewTokenDenylist()
	historyCache := memory.NewHistoryRepository(time.Hour)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)
	alertService := service.NewCrisisAlertService(uowFactory, natsSub, emailService, cfg.App.CareTeamEmail, sysLogger)
	c.CrisisAlertService = alertService

	publisherService := service.NewPublisherService(crisisTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		crisisTopic,
		uowFactory,
		wsHub,
		forwarder,
		alertService,
		sysLogger,
	)

	authService := service.NewAuthService(
		uowFactory,
		denylist,
		cfg.Auth.JwtSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		sysLogger,
	)
	chatService := service.NewChatService(
		uowFactory,
		classifier,
		retriever,
		llmProvider,
		historyCache,
		publisherService,
		service.ChatServiceConfig{HistoryWindow: cfg.Rag.HistoryWindow},
		sysLogger,
		llmLogger,
	)

	// 6. Controllers
	jwtMiddleware := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, denylist)
	chatLimiter := serverutils.NewRateLimiter(rdb, "chat", cfg.App.ChatRateLimit, time.Minute, sysLogger)

	c.AuthController = controller.NewAuthController(authService, jwtMiddleware, controller.CookieConfig{
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	})
	c.ChatController = controller.NewChatController(chatService, wsHub, jwtMiddleware, chatLimiter)
	c.KnowledgeController = controller.NewKnowledgeController(chatService, jwtMiddleware)
	c.ResourceController = controller.NewResourceController(controller.HealthProbe{
		PingDatabase: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		KnowledgeReady: retriever.Ready,
		LLMConfigured:  cfg.LLMAPIKey() != "" || cfg.Ai.LLMProvider == "ollama",
		Connections:    wsHub.ConnectionCount,
	})

	return c, nil
}

// WarmUp embeds the knowledge base so the first chat does not pay for it.
// Failures are logged; retrieval retries lazily on the next request.
func (c *Container) WarmUp(ctx context.Context) {
	if err := c.Retriever.Build(ctx); err != nil {
		c.Logger.Warn(constant.ModuleKnowledge, "Knowledge index warm-up failed", map[string]interface{}{"error": err.Error()})
		return
	}
	c.Logger.Info(constant.ModuleKnowledge, "Knowledge index ready", map[string]interface{}{"passages": len(c.Retriever.Corpus())})
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

func newClassifier(cfg *config.Config, log logger.ILogger) emotion.Classifier {
	onError := func(err error) {
		log.Warn(constant.ModuleChat, "Emotion classification failed, using neutral", map[string]interface{}{"error": err.Error()})
	}
	if cfg.Ai.EmotionProvider == "lexicon" || cfg.Keys.HuggingFace == "" {
		return emotion.NewFallbackClassifier(onError, emotion.NewLexiconClassifier())
	}
	return emotion.NewFallbackClassifier(onError,
		emotion.NewHuggingFaceClassifier(cfg.Keys.HuggingFace, "", cfg.Ai.EmotionModel),
		emotion.NewLexiconClassifier(),
	)
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.LLMBaseURL
}
