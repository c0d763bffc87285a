package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hotelrevenue/backend/internal/delivery/http"
	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/internal/forecast"
	"github.com/hotelrevenue/backend/internal/pricing"
	"github.com/hotelrevenue/backend/internal/repository/postgres"
	"github.com/hotelrevenue/backend/internal/service"
	"github.com/hotelrevenue/backend/pkg/logger"
)

// syntheticHistoryDays is how much demo history the fallback repository carries.
const syntheticHistoryDays = 730

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "hotelrevenue-backend")
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	rules := domain.DefaultRuleSet()

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo service.BookingRepository
	if cfg.DatabaseURL == "" {
		zlog.Warn("no DATABASE_URL configured, running with synthetic demo data")
		repo = postgres.NewSyntheticRepository(rules, syntheticHistoryDays)
	} else if pool, err := pgxpool.New(ctx, cfg.DatabaseURL); err != nil {
		zlog.Warn("could not connect to database, running with synthetic demo data", zap.Error(err))
		repo = postgres.NewSyntheticRepository(rules, syntheticHistoryDays)
	} else {
		defer pool.Close()
		zlog.Info("connected to PostgreSQL")
		repo = postgres.NewPostgresRepository(pool)
	}

	// Dependency Injection: core components
	forecaster, err := forecast.NewForecaster(forecast.DefaultConfig(), zlog)
	if err != nil {
		zlog.Fatal("invalid forecast configuration", zap.Error(err))
	}
	engine, err := pricing.NewEngine(rules, zlog)
	if err != nil {
		zlog.Fatal("invalid pricing rules", zap.Error(err))
	}
	revenueSvc := service.NewRevenueService(repo, forecaster, engine, rules, cfg.ModelDir, zlog)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "HotelRevenue API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	http.SetupRoutes(app, revenueSvc, zlog)

	// Graceful shutdown
	go func() {
		port := cfg.Port
		if port == "" {
			port = "8080"
		}
		zlog.Info("server starting", zap.String("port", port))
		if err := app.Listen(":" + port); err != nil {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zlog.Warn("server forced to shutdown", zap.Error(err))
	}
	revenueSvc.WaitBackground()
	zlog.Info("server exited gracefully")
}

type Config struct {
	DatabaseURL string
	Port        string
	ModelDir    string
	LogLevel    string
	LogFormat   string
	Env         string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		ModelDir:    getEnv("MODEL_DIR", "models"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		Env:         getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
