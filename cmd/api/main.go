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

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/config"
	"alfredoptarigan/compliance-readiness/internal/handlers"
	"alfredoptarigan/compliance-readiness/internal/repositories"
	"alfredoptarigan/compliance-readiness/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	rules, err := config.LoadRuleSet(cfg.Rules.RulesPath)
	if err != nil {
		log.Fatalf("❌ Failed to load rule set: %v", err)
	}

	directory, err := config.LoadDirectory(cfg.Rules.ResourcesPath)
	if err != nil {
		log.Fatalf("❌ Failed to load resource directory: %v", err)
	}

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initializes repositories
	docRepo := repositories.NewDocumentRepository(db)
	assessmentRepo := repositories.NewAssessmentRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	textExtractor := services.NewTextExtractor(cfg.Worker.Concurrency)
	reportRenderer := services.NewReportRenderer()
	log.Println("✅ Services initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gemini is optional: without it the assessor runs on pattern matching
	// alone and regulation search is disabled.
	var (
		places  compliance.PlaceRecognizer
		library services.RegulationLibrary
	)
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
	if err != nil {
		log.Printf("⚠️  Gemini AI disabled: %v\n", err)
	} else {
		log.Println("✅ Gemini AI initialized successfully")

		if cfg.Extraction.PlaceRecognition {
			places = services.NewPlaceRecognizer(geminiService, cfg.Extraction.PlaceRecognitionTimeout, cfg.Worker.RetryMaxAttempts)
			log.Println("✅ Place recognition enabled")
		}

		library = initRegulationLibrary(ctx, cfg, rules, geminiService)
	}

	assessor := compliance.NewAssessor(compliance.NewExtractor(places), rules, directory)
	log.Printf("✅ Assessor ready with %d checks (max score %.0f)\n", len(rules.Checks), rules.Sections.Total())

	processor := services.NewAssessmentProcessor(
		assessmentRepo,
		docRepo,
		storageService,
		textExtractor,
		assessor,
	)

	// Initialize worker
	worker := services.NewWorker(
		assessmentRepo,
		processor,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	worker.Start(ctx)

	// Initialize Handlers
	routes := handlers.Routes{
		Health:     handlers.NewHealthHandler(rules, library != nil),
		Scorecard:  handlers.NewScorecardHandler(assessor, assessmentRepo, textExtractor, cfg.Storage.MaxFileSize),
		Assessment: handlers.NewAssessmentHandler(assessmentRepo, storageService, worker, cfg.Storage.MaxFileSize),
		Report:     handlers.NewReportHandler(assessor, assessmentRepo, reportRenderer),
		Regulation: handlers.NewRegulationHandler(rules, library),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Compliance Readiness API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 4,
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
	routes.Register(app.Group("/api/v1"))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Compliance Readiness API",
			"version":   "1.0.0",
			"endpoints": routes.Endpoints("/api/v1"),
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

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initRegulationLibrary connects to Qdrant. Any failure disables regulation
// search instead of stopping the server.
func initRegulationLibrary(ctx context.Context, cfg *config.Config, rules *compliance.RuleSet, gemini services.GeminiService) services.RegulationLibrary {
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Printf("⚠️  Regulation search disabled: %v\n", err)
		return nil
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := qdrantService.InitCollection(initCtx); err != nil {
		log.Printf("⚠️  Regulation search disabled: %v\n", err)
		return nil
	}
	log.Println("✅ Qdrant initialized successfully")

	return services.NewRegulationLibrary(rules, gemini, qdrantService)
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
