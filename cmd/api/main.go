package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/config"
	"github.com/linkatalog/linkatalog/internal/events"
	"github.com/linkatalog/linkatalog/internal/infrastructure/db"
	"github.com/linkatalog/linkatalog/internal/infrastructure/logger"
	"github.com/linkatalog/linkatalog/internal/infrastructure/telemetry"
	"github.com/linkatalog/linkatalog/internal/storage/fs"
	mongoStorage "github.com/linkatalog/linkatalog/internal/storage/mongo"
	httpTransport "github.com/linkatalog/linkatalog/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(cfg.OTel.Endpoint, cfg.App.Name, cfg.App.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	mongoConn, err := db.ConnectMongo(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoConn.Disconnect() }()

	linkRepo, err := mongoStorage.NewLinksRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize links repository", zap.Error(err))
	}
	categoryRepo, err := mongoStorage.NewCategoriesRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize categories repository", zap.Error(err))
	}
	userRepo, err := mongoStorage.NewUsersRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize users repository", zap.Error(err))
	}
	statsRepo, err := mongoStorage.NewClickStatsRepository(mongoConn)
	if err != nil {
		logger.Fatal("Failed to initialize click stats repository", zap.Error(err))
	}

	imageStore, err := fs.NewImageStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("Failed to initialize image store", zap.Error(err))
	}

	var clickPublisher catalog.ClickPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaClickPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = kafkaPublisher.Close() }()
		clickPublisher = kafkaPublisher
		logger.Info("Kafka click publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	authSvc := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	catalogSvc := catalog.NewService(linkRepo, categoryRepo, imageStore, statsRepo, clickPublisher)

	router := httpTransport.NewRouter(cfg, catalogSvc, authSvc)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
