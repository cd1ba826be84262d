// @title TubeQuiz API
// @version 1.0
// @description Turns YouTube videos into 10-question multiple-choice quizzes.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
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
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	_ "tubequiz/cmd/api/docs"
	"tubequiz/internal/adapter"
	"tubequiz/internal/app"
	"tubequiz/internal/cache"
	"tubequiz/internal/config"
	"tubequiz/internal/handler"
	"tubequiz/internal/logger"
	"tubequiz/internal/middleware"
	"tubequiz/internal/repository"
	"tubequiz/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()
	if cfg.ConfigFile != "" {
		appLogger.Info("Using config file", zap.String("path", cfg.ConfigFile))
	}

	redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	pipeline, err := app.NewPipeline(cfg, appLogger, prometheus.DefaultRegisterer)
	if err != nil {
		appLogger.Fatal("Failed to build quiz pipeline", zap.Error(err))
	}

	quizStore := repository.NewQuizStore(cacheAdapter, cfg.Redis.QuizTTL, appLogger)
	quizService := service.NewQuizService(quizStore, pipeline, appLogger)
	quizHandler := handler.NewQuizHandler(quizService)

	fiberApp := newServer(cfg.Server, cacheAdapter, quizHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		appLogger.Info("Starting server", zap.String("address", addr))
		if err := fiberApp.Listen(addr); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

type pinger interface {
	Ping(ctx context.Context) error
}

// newServer builds the fiber app with middleware, health checks and API routes mounted.
func newServer(cfg config.ServerConfig, redis pinger, quizHandler *handler.QuizHandler) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New())
	fiberApp.Use(middleware.RequestLogger())

	fiberApp.Get("/healthz", func(c *fiber.Ctx) error {
		if err := redis.Ping(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Redis unavailable.")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	fiberApp.Get("/swagger/*", swagger.HandlerDefault)

	quizHandler.RegisterRoutes(fiberApp.Group("/api"))
	return fiberApp
}
