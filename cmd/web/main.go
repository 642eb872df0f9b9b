package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tarabaho-web/config"
	_ "tarabaho-web/docs" // Important for Swagger
	v1 "tarabaho-web/internal/delivery/http/v1"
	"tarabaho-web/internal/domain"
	"tarabaho-web/internal/gateway/tarabaho"
	"tarabaho-web/internal/repository/memory"
	"tarabaho-web/internal/repository/postgres"
	"tarabaho-web/internal/session"
	"tarabaho-web/internal/usecase"
	"tarabaho-web/pkg/database"
	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/redis"
	"tarabaho-web/pkg/security"
	"tarabaho-web/pkg/validation"
)

// @title           Tarabaho Web API
// @version         1.0
// @description     Browser backend for the Tarabaho portfolio service.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.InitWithWriter(os.Stdout, cfg.LogLevel)
	logger.Log.Info("Starting tarabaho web", "port", cfg.Port, "api_url", cfg.APIURL)

	probes := map[string]usecase.Probe{}

	// 3. Sessions: Redis when configured, otherwise process memory
	var sessions domain.SessionStore
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, sessions and rate limits stay in memory", "error", err)
		sessions = session.NewMemoryStore()
	} else {
		defer redis.Close()
		sessions = session.NewRedisStore(redis.Client(), cfg.SessionTTL)
		probes["redis"] = redis.HealthCheck
	}

	// 4. Save checkpoints: Postgres when configured
	var checkpoints domain.CheckpointRepository
	if cfg.DBUrl != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err == nil {
			err = postgres.EnsureCheckpointSchema(ctx, dbPool)
		}
		cancel()
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		checkpoints = postgres.NewCheckpointRepository(dbPool)
		probes["database"] = dbPool.Ping
	} else {
		logger.Log.Warn("DATABASE_URL not set, save checkpoints are kept in memory")
		checkpoints = memory.NewCheckpointRepository()
	}

	// 5. Tarabaho API client
	api, err := tarabaho.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	if err != nil {
		logger.Log.Error("Invalid Tarabaho API configuration", "error", err)
		os.Exit(1)
	}
	probes["tarabaho_api"] = api.Ping

	// 6. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(api)
	registrationUC := usecase.NewRegistrationUsecase(api, validate)
	portfolioUC := usecase.NewPortfolioUsecase(usecase.PortfolioDeps{
		Graduates:    api,
		Portfolios:   api,
		Certificates: api,
		Checkpoints:  checkpoints,
		Validate:     validate,
		Avatar: usecase.AvatarOptions{
			MaxDimension: cfg.AvatarMaxDimension,
			Quality:      cfg.AvatarJPEGQuality,
		},
	})
	browseUC := usecase.NewBrowseUsecase(api, api, api, validate)
	healthUC := usecase.NewHealthUsecase(probes)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		RegistrationUC: registrationUC,
		PortfolioUC:    portfolioUC,
		BrowseUC:       browseUC,
		HealthUC:       healthUC,
		SessionStore:   sessions,
		LoginTracker:   security.NewLoginTracker(redis.Client(), security.DefaultLoginTrackerConfig()),
		Config:         cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
