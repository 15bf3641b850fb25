package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/avatarforge/api/internal/client"
	"github.com/avatarforge/api/internal/config"
	"github.com/avatarforge/api/internal/handler"
	"github.com/avatarforge/api/internal/middleware"
	"github.com/avatarforge/api/internal/service"
	"github.com/avatarforge/api/internal/worker"
	ws "github.com/avatarforge/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// External AI client (unconfigured key → mock concepts)
	geminiClient := client.NewGeminiClient(&cfg.Gemini)

	// Initialize services
	editorService := service.NewEditorService(cfg.Editor.MaxVariations, cfg.Editor.MaxSessions)
	generationService := service.NewGenerationService(editorService, asynqClient)
	exportService := service.NewExportService()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(editorService, validate)
	generateHandler := handler.NewGenerateHandler(generationService, validate)
	exportHandler := handler.NewExportHandler(exportService, editorService, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    20 * 1024 * 1024, // 20MB, reference images are inline base64
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"gemini": geminiClient.IsConfigured(),
			},
		})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Session routes
	sessions := api.Group("/sessions")
	sessions.Post("/", sessionHandler.Create)
	sessions.Get("/:sessionId", sessionHandler.Get)
	sessions.Patch("/:sessionId/character", rateLimiter.UpdateLimit(cfg.RateLimit.UpdatesPerMin), sessionHandler.UpdateCharacter)
	sessions.Get("/:sessionId/geometry", sessionHandler.Geometry)
	sessions.Get("/:sessionId/variations", sessionHandler.ListVariations)
	sessions.Post("/:sessionId/variations/:index/select", sessionHandler.SelectVariation)

	// Generation routes
	sessions.Post("/:sessionId/generate", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), generateHandler.Start)
	sessions.Get("/:sessionId/tasks", generateHandler.List)
	sessions.Get("/:sessionId/tasks/:taskId", generateHandler.Status)
	sessions.Post("/:sessionId/tasks/:taskId/cancel", generateHandler.Cancel)

	// Export routes
	sessions.Post("/:sessionId/export", rateLimiter.ExportLimit(cfg.RateLimit.ExportPerHour), exportHandler.Export)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/tasks/:taskId", websocket.New(func(c *websocket.Conn) {
		taskID := c.Params("taskId")
		hub.HandleConnection(c, taskID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, editorService, geminiClient, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, editorService *service.EditorService, geminiClient *client.GeminiClient, hub *ws.Hub) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				service.QueueGenerate: 10,
			},
		},
	)

	generateWorker := worker.NewGenerateWorker(editorService, geminiClient, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeGenerate, generateWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
