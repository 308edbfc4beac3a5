package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/auth"
	"github.com/JanConnect/JanConnect-sub001/internal/cache"
	"github.com/JanConnect/JanConnect-sub001/internal/config"
	"github.com/JanConnect/JanConnect-sub001/internal/filter"
	"github.com/JanConnect/JanConnect-sub001/internal/handlers"
	"github.com/JanConnect/JanConnect-sub001/internal/interactions"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/session"
	"github.com/JanConnect/JanConnect-sub001/internal/source"
	"github.com/JanConnect/JanConnect-sub001/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File, true); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== civicfeed server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("config", cfg.File),
	)

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Telemetry.Endpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}

	store, closeStore, err := interactions.Open(interactions.OpenConfig{
		Driver: cfg.Store.Driver,
		Dir:    cfg.Store.Dir,
		DSN:    cfg.Store.DSN,
		Redis: cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		logger.Log.Fatal("Failed to open interaction store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	var remote source.Source
	if cfg.Demo.Enabled {
		logger.Log.Info("Serving a generated demo feed", zap.Uint64("seed", cfg.Demo.Seed), zap.Int("posts", cfg.Demo.Posts))
		remote = source.NewDemoSource(cfg.Demo.Seed, cfg.Demo.Posts, time.Now())
	} else {
		remote = source.NewRESTClient(source.RESTOptions{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.APITimeout(),
			Token:   cfg.API.Token,
		})
	}

	loc, err := cfg.UserLocation()
	if err != nil {
		logger.Log.Fatal("Invalid feed.location", zap.Error(err))
	}
	sessions := session.NewManager(remote, store, session.Options{
		PageSize: cfg.Feed.PageSize,
		Filter: filter.Context{
			UserLocation: loc,
			Municipality: cfg.Feed.Municipality,
			RadiusKm:     cfg.Feed.RadiusKm,
		},
	})

	development := cfg.Environment == "development"
	secret := cfg.Server.JWTSecret
	if secret == "" {
		if !development {
			logger.Log.Fatal("server.jwt_secret (CIVICFEED_SERVER_JWT_SECRET) is required outside development")
		}
		secret = "civicfeed-development-secret"
		logger.Log.Warn("Using the built-in development JWT secret")
	}
	authService := auth.NewService([]byte(secret))

	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handlers.SetupRouter(handlers.NewHandlers(sessions, authService), handlers.RouterConfig{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tracing:        tp != nil,
		ServiceName:    cfg.Telemetry.ServiceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	if idle := cfg.SessionIdle(); idle > 0 {
		go sessions.RunEviction(evictCtx, time.Minute, idle)
	}

	go func() {
		logger.Log.Info("civicfeed server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopEviction()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx, tp); err != nil {
		logger.Log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
