package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kursadbilgin/sms-bridge/internal/bridge"
	"github.com/kursadbilgin/sms-bridge/internal/clock"
	"github.com/kursadbilgin/sms-bridge/internal/config"
	"github.com/kursadbilgin/sms-bridge/internal/dispatcher"
	"github.com/kursadbilgin/sms-bridge/internal/handler"
	infraredis "github.com/kursadbilgin/sms-bridge/internal/infra/redis"
	"github.com/kursadbilgin/sms-bridge/internal/observability"
	"github.com/kursadbilgin/sms-bridge/internal/provider"
	"github.com/kursadbilgin/sms-bridge/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("sms-bridge stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	gateway, err := provider.NewGatewayClient(cfg.GatewayURL, cfg.GatewayTimeout)
	if err != nil {
		return fmt.Errorf("gateway client initialization failed: %w", err)
	}

	var sender provider.Transport = gateway
	var rdb *redis.Client
	if cfg.RateLimitEnabled() {
		rdb, err = infraredis.NewRedis(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		defer rdb.Close()

		limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
		if err != nil {
			return fmt.Errorf("rate limiter initialization failed: %w", err)
		}
		if sender, err = provider.NewRateLimitedTransport(gateway, limiter); err != nil {
			return fmt.Errorf("rate limited transport initialization failed: %w", err)
		}
		logger.Info("send rate limiting enabled", zap.Int("limitPerSec", cfg.RateLimitPerSec))
	}

	d, err := dispatcher.New(sender, permissionProbe(cfg.PermissionMode, gateway), clock.System{}, cfg.DefaultCallingCode, logger)
	if err != nil {
		return fmt.Errorf("dispatcher initialization failed: %w", err)
	}
	d.SetMetrics(metrics)

	module, err := bridge.NewModule(d)
	if err != nil {
		return fmt.Errorf("bridge initialization failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "sms-bridge",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, rdb)
	if err := handler.RegisterSMSRoutes(app, module); err != nil {
		return fmt.Errorf("route registration failed: %w", err)
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("sms-bridge api started",
			zap.Int("port", cfg.APIPort),
			zap.String("permissionMode", cfg.PermissionMode),
			zap.String("callingCode", d.CallingCode()),
		)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down sms-bridge api")
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})

	return g.Wait()
}

func permissionProbe(mode string, gateway *provider.GatewayClient) provider.PermissionProbe {
	switch mode {
	case config.PermissionModeGranted:
		return provider.StaticPermission(true)
	case config.PermissionModeDenied:
		return provider.StaticPermission(false)
	default:
		return gateway
	}
}
