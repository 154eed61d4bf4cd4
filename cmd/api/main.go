package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"resume-screener/internal/config"
	"resume-screener/internal/handlers"
	"resume-screener/internal/logger"
	"resume-screener/internal/repositories"
	"resume-screener/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Server.Env != "development", cfg.Server.Env == "development")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	extractor := services.NewExtractorService()

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.Timeout,
		zapLogger,
	)
	if err != nil {
		zapLogger.Fatal("failed to initialize gemini", zap.Error(err))
	}

	verifier, err := services.NewPolicyVerifier(cfg.Screening.ForbiddenCompanies)
	if err != nil {
		zapLogger.Fatal("failed to compile policy deny list", zap.Error(err))
	}

	screener := services.NewScreenerService(
		extractor,
		geminiService,
		verifier,
		cfg.Screening.ScoreThreshold,
		zapLogger,
	)

	// Initialize handlers
	evaluateHandler := handlers.NewEvaluateHandler(
		extractor,
		screener,
		auditRepo,
		cfg.Screening.MaxFileSize,
		cfg.Screening.MinJDLength,
		zapLogger,
	)
	logsHandler := handlers.NewLogsHandler(auditRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "HR Resume Screener API",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Screening.MaxFileSize) * 8,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Actor, X-Actor-Role",
	}))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Get("/logs", logsHandler.HandleListLogs)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HR Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/evaluate",
				"GET /api/v1/logs",
				"GET /api/v1/health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zapLogger.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zapLogger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLogger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
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
