package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	contracts "talentlink/contracts/mq"
	"talentlink/internal/model"
	"talentlink/internal/repository"
	"talentlink/internal/util"
	"talentlink/pkg/metrics"
)

// ApplicationSubmittedHandler tells the project's client about a new bid.
type ApplicationSubmittedHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewApplicationSubmittedHandler(repo *repository.NotificationRepository, deduper *util.Deduper, logger *zap.Logger) *ApplicationSubmittedHandler {
	return &ApplicationSubmittedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ApplicationSubmittedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p contracts.ApplicationSubmittedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal application submitted payload", zap.Error(err))
		return err
	}

	key, entity := applicationSubmittedKey(p)
	if !h.deduper.AcquireOnce(ctx, key, entity) {
		h.logger.Info("Duplicate application submitted delivery skipped",
			zap.Int("application_id", p.ApplicationID),
			zap.Int("project_id", p.ProjectID),
		)
		return nil
	}

	notif := &model.Notification{
		UserID:    p.ClientID,
		Type:      "application_submitted",
		Content:   fmt.Sprintf("%s applied to your project %q", p.ApplicantName, p.ProjectTitle),
		CreatedAt: time.Now(),
	}

	if err := h.repo.Insert(ctx, notif); err != nil {
		h.logger.Error("Failed to insert notification",
			zap.Int("project_id", p.ProjectID),
			zap.Int("client_id", p.ClientID),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementNotification("application_submitted")
	h.logger.Info("Application submitted notification created",
		zap.Int("project_id", p.ProjectID),
		zap.Int("client_id", p.ClientID),
	)
	return nil
}
