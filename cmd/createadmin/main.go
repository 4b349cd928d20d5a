package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/linkatalog/linkatalog/internal/auth"
	"github.com/linkatalog/linkatalog/internal/config"
	"github.com/linkatalog/linkatalog/internal/infrastructure/db"
	"github.com/linkatalog/linkatalog/internal/infrastructure/logger"
	mongoStorage "github.com/linkatalog/linkatalog/internal/storage/mongo"
	"go.uber.org/zap"
)

// Seeds the initial admin user. Does nothing when an admin already exists.
func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email <email> -password <password> [-username <name>]")
		os.Exit(2)
	}

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

	mongoConn, err := db.ConnectMongo(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoConn.Disconnect() }()

	userRepo, err := mongoStorage.NewUsersRepository(mongoConn)
	if err != nil {
		logger.Fatal("failed to initialize users repository", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := userRepo.FindByRole(ctx, auth.RoleAdmin)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		logger.Fatal("failed to check for existing admin", zap.Error(err))
	}
	if existing != nil {
		logger.Info("admin user already exists", zap.String("email", existing.Email))
		return
	}

	authSvc := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	user, err := authSvc.CreateUser(ctx, *username, *email, *password, auth.RoleAdmin)
	if err != nil {
		logger.Fatal("failed to create admin user", zap.Error(err))
	}

	logger.Info("admin user created",
		zap.String("id", user.ID),
		zap.String("email", user.Email),
	)
}
