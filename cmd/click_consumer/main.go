package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/linkatalog/linkatalog/internal/config"
	"github.com/linkatalog/linkatalog/internal/events"
	"github.com/linkatalog/linkatalog/internal/infrastructure/db"
	"github.com/linkatalog/linkatalog/internal/infrastructure/logger"
	mongoStorage "github.com/linkatalog/linkatalog/internal/storage/mongo"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type consumerConfig struct {
	appEnv        string
	mongoURI      string
	mongoDatabase string

	kafkaBrokers []string
	kafkaTopic   string
	kafkaGroupID string

	fetchMaxWait   time.Duration
	operationTTL   time.Duration
	consumeBackoff time.Duration
}

func loadConsumerConfig() consumerConfig {
	return consumerConfig{
		appEnv:         config.GetEnv("APP_ENV", "development"),
		mongoURI:       config.GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		mongoDatabase:  config.GetEnv("MONGODB_DATABASE", "linkatalog"),
		kafkaBrokers:   config.SplitCSV(config.GetEnv("KAFKA_BROKERS", "localhost:9092")),
		kafkaTopic:     config.GetEnv("KAFKA_CLICKS_TOPIC", "catalog.clicks"),
		kafkaGroupID:   config.GetEnv("KAFKA_GROUP_ID", "click-stats-aggregator"),
		fetchMaxWait:   config.GetEnvDuration("KAFKA_FETCH_MAX_WAIT", time.Second),
		operationTTL:   config.GetEnvDuration("CONSUMER_OPERATION_TTL", 10*time.Second),
		consumeBackoff: config.GetEnvDuration("CONSUMER_BACKOFF", time.Second),
	}
}

func main() {
	cfg := loadConsumerConfig()

	if err := logger.Init(cfg.appEnv); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mongoConn, err := db.ConnectMongo(cfg.mongoURI, cfg.mongoDatabase)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoConn.Disconnect() }()

	statsRepo, err := mongoStorage.NewClickStatsRepository(mongoConn)
	if err != nil {
		logger.Fatal("failed to initialize click stats repository", zap.Error(err))
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.kafkaBrokers,
		Topic:       cfg.kafkaTopic,
		GroupID:     cfg.kafkaGroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     cfg.fetchMaxWait,
		StartOffset: kafka.FirstOffset,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("failed to close kafka reader", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("click consumer started",
		zap.Strings("kafka_brokers", cfg.kafkaBrokers),
		zap.String("kafka_topic", cfg.kafkaTopic),
		zap.String("kafka_group", cfg.kafkaGroupID),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("click consumer stopping")
				return
			}
			logger.Error("failed to fetch kafka message", zap.Error(err))
			time.Sleep(cfg.consumeBackoff)
			continue
		}

		if err := processMessage(ctx, msg, statsRepo, cfg.operationTTL); err != nil {
			logger.Error("failed to process click event",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			time.Sleep(cfg.consumeBackoff)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error("failed to commit kafka offset",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			time.Sleep(cfg.consumeBackoff)
		}
	}
}

func processMessage(ctx context.Context, msg kafka.Message, statsRepo *mongoStorage.ClickStatsRepository, operationTTL time.Duration) error {
	var event events.ClickRecorded
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Warn("invalid click event payload, skipping",
			zap.Error(err),
			zap.ByteString("payload", msg.Value),
		)
		return nil
	}
	if strings.TrimSpace(event.LinkID) == "" {
		logger.Warn("click event missing link id, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	occurredAt := msg.Time.UTC()
	if parsed, err := time.Parse(time.RFC3339Nano, event.OccurredAt); err == nil {
		occurredAt = parsed.UTC()
	}

	opCtx, cancel := context.WithTimeout(ctx, operationTTL)
	defer cancel()

	return statsRepo.IncDaily(opCtx, event.LinkID, occurredAt)
}
