package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"talentlink/internal/api"
	"talentlink/internal/cache"
	"talentlink/internal/config"
	"talentlink/internal/repository"
	"talentlink/internal/service/auth"
	"talentlink/internal/service/lifecycle"
	"talentlink/pkg/db"
	"talentlink/pkg/logger"
	"talentlink/pkg/mq"
	"talentlink/pkg/outbox"
	redisclient "talentlink/pkg/redis"
)

func main() {
	cfg := config.Load()

	logger := logger.NewLogger()
	defer logger.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init MQ publisher + outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, logger)
	go dispatcher.Start(context.Background())

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, outboxRepo, logger)
	applicationRepo := repository.NewApplicationRepository(dbConn, outboxRepo, logger)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Init Services
	projectCache := cache.NewProjectCache(rdb, 30*time.Second, logger)
	lifecycleService := lifecycle.NewService(projectRepo, applicationRepo, projectCache, logger)
	authService := auth.NewService(userRepo, cfg.JWT.Secret)

	// Init Handlers
	authHandler := api.NewAuthHandler(authService, logger)
	projectHandler := api.NewProjectHandler(lifecycleService, logger)
	applicationHandler := api.NewApplicationHandler(lifecycleService, logger)
	notificationHandler := api.NewNotificationHandler(notificationRepo, logger)

	// Router
	router := api.NewRouter(
		authHandler,
		projectHandler,
		applicationHandler,
		notificationHandler,
		cfg.JWT.Secret,
		dbConn,
	)

	logger.Info("Starting lifecycle API", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}
