package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Harin-6044/Resume-Shortlister/internal/config"
	"github.com/Harin-6044/Resume-Shortlister/internal/handlers"
	"github.com/Harin-6044/Resume-Shortlister/internal/repositories"
	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	sessionRepo := repositories.NewSessionRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage
	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	if err := storageService.EnsureReady(ctx); err != nil {
		log.Fatalf("❌ Storage is not ready: %v", err)
	}
	log.Printf("✅ Storage initialized (%s)\n", cfg.Storage.Backend)

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, cfg.Worker)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	candidateIndex, err := services.NewCandidateIndex(cfg.Qdrant)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	defer candidateIndex.Close()

	if err := candidateIndex.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}

	// Initialize events
	publisher, err := services.NewEventPublisher(cfg.Events)
	if err != nil {
		log.Fatalf("❌ Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Screening pipeline
	promptBuilder := services.NewPromptBuilder(cfg.Screening.RecommendThreshold, cfg.Screening.MaxResumeChars)
	analyzer := services.NewCandidateAnalyzer(geminiService, promptBuilder, cfg.Screening.RecommendThreshold)
	screener := services.NewScreener(
		services.NewResumeExtractor(),
		analyzer,
		cfg.Screening.MaxResumesPerRequest,
		cfg.Screening.AnalysisConcurrency,
	)
	searchService := services.NewCandidateSearchService(candidateIndex, geminiService, services.NewTextChunker(), promptBuilder)
	processor := services.NewSessionProcessor(
		sessionRepo,
		docRepo,
		candidateRepo,
		storageService,
		screener,
		searchService,
		publisher,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(sessionRepo, processor, cfg.Worker.Concurrency)
	worker.Start(ctx)

	// Initialize Handlers
	screenHandler := handlers.NewScreenHandler(screener, cfg.Screening.MaxResumesPerRequest, cfg.Storage.MaxFileSize)
	sessionHandler := handlers.NewSessionHandler(
		sessionRepo,
		candidateRepo,
		storageService,
		worker,
		cfg.Screening.MaxResumesPerRequest,
		cfg.Storage.MaxFileSize,
	)
	searchHandler := handlers.NewSearchHandler(searchService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Shortlister API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize)*cfg.Screening.MaxResumesPerRequest + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/screen", screenHandler.HandleScreen)
	api.Post("/sessions", sessionHandler.HandleCreate)
	api.Get("/sessions/:id", sessionHandler.HandleGet)
	api.Get("/candidates/search", searchHandler.HandleSearch)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Shortlister API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/screen",
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"GET /api/v1/candidates/search?q=",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
