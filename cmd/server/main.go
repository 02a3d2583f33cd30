package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/billingkit/cielo-gateway/internal/adapters/cielo"
	"github.com/billingkit/cielo-gateway/internal/adapters/postgres"
	"github.com/billingkit/cielo-gateway/internal/config"
	paymentHandler "github.com/billingkit/cielo-gateway/internal/handlers/payment"
	pkghttp "github.com/billingkit/cielo-gateway/pkg/http"
	"github.com/billingkit/cielo-gateway/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting cielo gateway",
		zap.String("environment", cfg.Gateway.Environment),
	)

	ctx := context.Background()

	// Database connection pool
	dbPool, err := initDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	// Resolve the merchant key, from a secrets backend when configured
	merchantKey, err := resolveMerchantKey(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to resolve merchant key", zap.Error(err))
	}

	// Provider gateway
	gatewayEnv, err := cielo.ParseEnvironment(cfg.Gateway.Environment)
	if err != nil {
		logger.Fatal("Invalid gateway environment", zap.Error(err))
	}
	gatewayConfig := cielo.DefaultConfig()
	gatewayConfig.Environment = gatewayEnv
	gatewayConfig.MerchantID = cfg.Gateway.MerchantID
	gatewayConfig.MerchantKey = merchantKey
	gatewayConfig.ConnectTimeout = cfg.Gateway.ConnectTimeout
	gatewayConfig.SocketTimeout = cfg.Gateway.SocketTimeout
	gatewayConfig.MaxConnections = cfg.Gateway.MaxConnections

	httpClient := pkghttp.NewHTTPClient(
		pkghttp.GatewayClientConfig(gatewayConfig.ConnectTimeout, gatewayConfig.MaxConnections),
		gatewayConfig.SocketTimeout,
	)

	gateway, err := cielo.NewClient(gatewayConfig, httpClient, cielo.NewOutcomeTable(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize gateway", zap.Error(err))
	}

	// Audit store
	auditRepo := postgres.NewAuditRepository(postgres.NewDBExecutor(dbPool), logger)

	// HTTP API
	mux := http.NewServeMux()
	handler := paymentHandler.NewHandler(gateway, auditRepo, logger)
	handler.Register(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Metrics and health endpoints on a separate port
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker)
	logger.Info("Metrics server started", zap.Int("port", cfg.Server.MetricsPort))

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
