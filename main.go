package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/sahayak-backend/config"
	"github.com/fenilmodi00/sahayak-backend/database"
	"github.com/fenilmodi00/sahayak-backend/handlers"
	"github.com/fenilmodi00/sahayak-backend/jobs"
	"github.com/fenilmodi00/sahayak-backend/services"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	unified := shared.NewDefaultUnifiedConfiguration()
	unified.Service.LLMTimeout = cfg.GetLLMTimeout()
	unified.Service.PageFetchDelay = config.DefaultRateLimitConfig().PolitenessDelay
	unified.Service.RenderJS = cfg.RenderJS()
	unified.Cache.SchemeTTL = cfg.GetCacheTTL()
	unified.Ingestion.Interval = cfg.GetIngestionInterval()
	unified.Logging.Level = cfg.LogLevel
	unified.Logging.Format = cfg.LogFormat
	unified.ValidateAndApplyDefaults()

	shared.ConfigureLogging(unified.Logging)
	if data, err := unified.ToJSON(); err == nil {
		logrus.Debugf("Effective configuration: %s", data)
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to database
	if err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := database.Migrate(migrateCtx); err != nil {
		logrus.Warnf("Migration warning: %v", err)
	}
	cancelMigrate()

	registry := shared.NewMetricsRegistry()
	clientFactory := shared.NewHTTPClientFactory(unified.Service.SearchTimeout)
	defer clientFactory.CleanupAllClients()

	// Repositories
	schemeService := services.NewSchemeService(database.DB)
	userService := services.NewUserService(database.DB)
	notificationService := services.NewNotificationService(database.DB)
	chatHistoryService := services.NewChatHistoryService(database.DB)

	// External collaborators
	gemini, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiChatModel,
		unified.Service.LLMTimeout, registry.Generative)
	if err != nil {
		logrus.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer gemini.Close()

	exa := services.NewExaService(cfg.ExaAPIKey, clientFactory, unified.Service.SearchTimeout, registry.Outbound)
	whatsapp := services.NewWhatsAppService(cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID, clientFactory,
		unified.Service.MessagingTimeout, registry.Outbound)

	var fetcher services.ContentFetcher = services.NewPageTextFetcher(unified.Service.PageFetchTimeout, unified.Service.PageFetchDelay)
	if unified.Service.RenderJS {
		fetcher = services.NewRenderedPageFetcher(unified.Service.PageFetchTimeout)
	}

	if cfg.ExaAPIKey == "" {
		logrus.Warn("EXA_API_KEY not set, scheme ingestion will fail until it is configured")
	}
	if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneNumberID == "" {
		logrus.Warn("WhatsApp credentials not set, scheme alerts will only be stored as notifications")
	}

	// Core services
	schemeCache := services.NewSchemeCache(unified.Cache.SchemeTTL)
	taskQueue := services.NewTaskQueue(unified.Ingestion.TaskQueueSize, unified.Ingestion.TaskQueueWorkers, 10*time.Second)

	jwtManager := services.NewJWTManager(cfg.JWTSecret, cfg.GetJWTTTL())
	authService := services.NewAuthService(userService, jwtManager)
	answerService := services.NewAnswerService(gemini)
	chatService := services.NewChatService(schemeService, schemeCache, answerService, chatHistoryService, taskQueue)
	explanationService := services.NewExplanationService(gemini, unified.Cache.ExplanationEntries)
	ingestionService := services.NewIngestionService(services.IngestionDependencies{
		Searcher:      exa,
		Extractor:     services.NewExtractionService(gemini, registry.Extraction),
		Fetcher:       fetcher,
		Schemes:       schemeService,
		Users:         userService,
		Notifications: notificationService,
		Notifier:      whatsapp,
		Cache:         schemeCache,
		Metrics:       registry.Ingestion,
	})

	logrus.WithFields(logrus.Fields{
		"cache_ttl":          unified.Cache.SchemeTTL,
		"ingestion_interval": unified.Ingestion.Interval,
		"llm_timeout":        unified.Service.LLMTimeout,
		"render_js":          unified.Service.RenderJS,
	}).Info("Sahayak backend services initialized")

	// Jobs
	ingestionJob := jobs.NewSchemeIngestionJob(ingestionService, 0)
	ingestionJob.Start(unified.Ingestion.Interval)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	schemeHandler := handlers.NewSchemeHandler(schemeService, ingestionService)
	chatHandler := handlers.NewChatHandler(chatService, schemeService, explanationService)
	cacheHandler := handlers.NewCacheHandler(schemeCache)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	metricsHandler := handlers.NewMetricsHandler(database.DB, registry, schemeCache)

	// Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "sahayak-backend",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if err := database.HealthCheck(c.UserContext()); err != nil {
			dbStatus = err.Error()
		}
		return c.JSON(fiber.Map{
			"status":    "ok",
			"database":  dbStatus,
			"timestamp": time.Now().Unix(),
		})
	})

	// Routes
	api := app.Group("/api/v1")
	requireAuth := handlers.RequireAuth(authService)

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", requireAuth, authHandler.Me)

	// Scheme Routes
	api.Get("/schemes", schemeHandler.ListSchemes)
	api.Post("/schemes/fetch", schemeHandler.FetchSchemes)
	api.Get("/schemes/:id", schemeHandler.GetScheme)

	// AI Routes
	ai := api.Group("/ai")
	ai.Post("/chat", requireAuth, chatHandler.Chat)
	ai.Post("/chat/public", chatHandler.PublicChat)
	ai.Post("/scheme-info/:id", chatHandler.SchemeInfo)
	ai.Get("/cache/stats", cacheHandler.GetStats)
	ai.Post("/cache/clear", cacheHandler.Clear)

	// Notification Routes
	api.Get("/notifications/:user_id", notificationHandler.ListByUser)

	// Metrics Routes
	api.Get("/metrics", metricsHandler.GetMetrics)

	go func() {
		logrus.Infof("Server starting on port %s", cfg.ServerPort)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}

	ingestionJob.Stop()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDrain()
	if err := taskQueue.Shutdown(drainCtx); err != nil {
		logrus.Warnf("Background tasks did not finish: %v", err)
	}

	registry.Ingestion.LogSummary()
	registry.Generative.LogSummary()
	logrus.Info("Server stopped")
}
