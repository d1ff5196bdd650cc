package main

import (
	"time"

	"go.uber.org/zap"

	contracts "talentlink/contracts/mq"
	"talentlink/internal/config"
	"talentlink/internal/mqhandler"
	"talentlink/internal/repository"
	"talentlink/internal/util"
	"talentlink/pkg/db"
	"talentlink/pkg/logger"
	"talentlink/pkg/mq"
	redisclient "talentlink/pkg/redis"
)

func main() {
	cfg := config.Load()

	logger := logger.NewLogger()
	defer logger.Sync()

	logger.Info("Starting notification worker...")

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Init Handlers
	submittedHandler := mqhandler.NewApplicationSubmittedHandler(notificationRepo, deduper, logger)
	decidedHandler := mqhandler.NewApplicationDecidedHandler(notificationRepo, deduper, logger)
	proposalHandler := mqhandler.NewProposalSubmittedHandler(notificationRepo, deduper, logger)
	resolvedHandler := mqhandler.NewProposalResolvedHandler(notificationRepo, deduper, logger)
	statusHandler := mqhandler.NewProjectStatusChangedHandler(notificationRepo, deduper, logger)

	consumers := []struct {
		queue      string
		routingKey string
		handler    mq.MessageHandler
	}{
		{"application.submitted.notify.q", contracts.RoutingApplicationSubmitted, submittedHandler.Handle},
		{"application.decided.notify.q", contracts.RoutingApplicationDecided, decidedHandler.Handle},
		{"proposal.submitted.notify.q", contracts.RoutingProposalSubmitted, proposalHandler.Handle},
		{"proposal.resolved.notify.q", contracts.RoutingProposalResolved, resolvedHandler.Handle},
		{"project.status_changed.notify.q", contracts.RoutingProjectStatusChanged, statusHandler.Handle},
	}

	for _, c := range consumers {
		logger.Info("Initializing consumer",
			zap.String("queue", c.queue),
			zap.String("routing_key", c.routingKey),
		)
		consumer, err := mq.NewConsumer(cfg.MQ.URL, c.queue, c.routingKey, logger)
		if err != nil {
			logger.Fatal("failed to init consumer", zap.String("queue", c.queue), zap.Error(err))
		}
		consumer.SetHandler(c.handler)
		defer consumer.Close()

		go func(queue string, consumer *mq.Consumer) {
			if err := consumer.StartConsuming(); err != nil {
				logger.Fatal("consumer failed", zap.String("queue", queue), zap.Error(err))
			}
		}(c.queue, consumer)
	}

	logger.Info("All consumers started, worker is ready to process messages")

	// Keep worker running
	select {}
}
