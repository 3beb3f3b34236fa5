package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/config"
	"github.com/Hverma1206/saan-candles-backend/internal/notification"
	"github.com/Hverma1206/saan-candles-backend/internal/repository"
	"github.com/Hverma1206/saan-candles-backend/internal/service"
	transport "github.com/Hverma1206/saan-candles-backend/internal/transport/http"
	"github.com/Hverma1206/saan-candles-backend/pkg/db"
	"github.com/Hverma1206/saan-candles-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(cfg.Logger, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.Telemetry.Enabled {
		tp, err := utils.InitTracer(ctx, "candle-shop", cfg.Telemetry.Endpoint, cfg.Env)
		if err != nil {
			logger.Fatal("Failed to init tracer", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Redis close failed", zap.Error(err))
		}
	}()

	candleRepo := repository.NewCandleRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	emailSender := notification.NewEmailSender(cfg.SMTP)
	notifier := notification.NewOrderNotifier(emailSender, logger)

	catalogService := service.NewCachedCatalogService(
		service.NewCatalogService(candleRepo, logger),
		redisClient,
		cfg.Redis.CacheTTL,
		logger,
	)
	orderService := service.NewOrderService(pool, orderRepo, candleRepo, notifier, logger)
	authService := service.NewAuthService(
		userRepo,
		emailSender,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		cfg.Auth.OTPExpiry,
		logger,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout: cfg.HTTP.Timeout,
	})

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 5 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Try again later.",
			})
		},
	}))

	transport.SetupRoutes(app, transport.RouterDeps{
		AuthService:    authService,
		CatalogService: catalogService,
		OrderService:   orderService,
		JWTSecret:      cfg.Auth.JWTSecret,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.HTTP.Port))

	<-ctx.Done()

	logger.Info("Shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
