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
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/config"
	"alfredoptarigan/candidate-assistant/internal/handlers"
	"alfredoptarigan/candidate-assistant/internal/logger"
	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/repositories"
	"alfredoptarigan/candidate-assistant/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("❌ Invalid configuration", zap.Error(err))
	}
	zl.Info("✅ Config loaded successfully")

	ctx := context.Background()

	// Conversation store backend
	newStore := repositories.ConversationStoreFactory(repositories.NewMemoryConversationStore)
	if cfg.Store.Backend == config.BackendPostgres {
		db, err := config.InitDatabase(cfg, zl)
		if err != nil {
			zl.Fatal("❌ Failed to initialize database", zap.Error(err))
		}
		newStore = repositories.NewGormConversationStoreFactory(db)
	}
	zl.Info("✅ Conversation store ready", zap.String("backend", cfg.Store.Backend))

	// Chat provider
	gateway, err := services.NewCompletionGateway(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize chat provider", zap.Error(err))
	}
	zl.Info("✅ Chat provider initialized",
		zap.String("provider", cfg.Chat.Provider),
		zap.String("model", gateway.Model()),
	)

	// Passage index
	index, err := services.NewPassageIndex(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize passage index", zap.Error(err))
	}

	registry := services.NewSessionRegistry(services.SessionDeps{
		Extractor: services.NewDocumentExtractor(),
		Prompts:   services.NewPromptBuilder(),
		Gateway:   gateway,
		Index:     index,
		Logger:    zl,
	}, newStore, cfg.Session.TTL)

	reaper := services.NewReaper(registry, cfg.Session.SweepInterval, zl)
	reaper.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Candidate Assistant API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * len(models.DocumentKinds),
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(app, handlers.Handlers{
		Sessions: handlers.NewSessionHandler(registry),
		Uploads:  handlers.NewUploadHandler(registry, services.NewUploadReader(cfg.Storage.MaxFileSize)),
		Chat:     handlers.NewChatHandler(registry, zl),
		Search:   handlers.NewSearchHandler(registry, index),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("🛑 Shutting down server...")
		reaper.Stop()
		if err := app.Shutdown(); err != nil {
			zl.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
