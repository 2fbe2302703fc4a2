package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskly/backend/internal/auth"
	"taskly/backend/internal/cache"
	"taskly/backend/internal/config"
	"taskly/backend/internal/database"
	"taskly/backend/internal/events"
	"taskly/backend/internal/logging"
	"taskly/backend/internal/monitoring"
	"taskly/backend/internal/router"
	"taskly/backend/internal/services"
	"taskly/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.Log, cfg.IsProduction())
	defer logger.Sync()

	connector := database.NewConnector(cfg)

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.GetRedisAddr())
	defer redisCache.Close()

	bus := events.NewBus()

	taskService := services.NewCachedTaskService(services.NewTaskService(), redisCache, bus)
	defer taskService.Close()

	issuer := auth.NewLocalIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	firebaseVerifier := auth.NewFirebaseVerifier(cfg.Auth.FirebaseProjectID)
	verifier := auth.NewChain(firebaseVerifier, issuer)

	metrics := monitoring.NewMetrics()
	health := monitoring.NewHealthChecker()
	health.Register("database", func(ctx context.Context) error {
		db, err := connector.Acquire(ctx)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	health.Register("redis", redisCache.Health)

	engine := router.New(router.Deps{
		Config:           cfg,
		Connector:        connector,
		TaskService:      taskService,
		AuthService:      services.NewAuthService(),
		RegisterService:  services.NewRegisterService(cfg.Auth.BCryptCost),
		FederatedService: services.NewFederatedService(),
		Verifier:         verifier,
		IDTokenVerifier:  firebaseVerifier,
		Issuer:           issuer,
		Bus:              bus,
		Metrics:          metrics,
		Health:           health,
		Logger:           logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sweeper *worker.Sweeper
	if cfg.Sweeper.Enabled {
		// The sweeper shares the lazily opened connection; if the first
		// acquire fails the server is not worth starting.
		db, err := connector.Acquire(ctx)
		if err != nil {
			logger.Fatalw("failed to connect to database", "error", err)
		}
		sweeper = worker.NewSweeper(db, bus, cfg.Sweeper.PollInterval, logger)
		sweeper.Start()
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infow("server listening", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("shutdown error", "error", err)
	}
}
