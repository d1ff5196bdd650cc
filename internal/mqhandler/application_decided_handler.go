package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	contracts "talentlink/contracts/mq"
	"talentlink/internal/model"
	"talentlink/internal/repository"
	"talentlink/internal/util"
	"talentlink/pkg/metrics"
)

// ApplicationDecidedHandler tells the freelancer their bid was accepted or
// rejected.
type ApplicationDecidedHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewApplicationDecidedHandler(repo *repository.NotificationRepository, deduper *util.Deduper, logger *zap.Logger) *ApplicationDecidedHandler {
	return &ApplicationDecidedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ApplicationDecidedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p contracts.ApplicationDecidedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal application decided payload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "application_decided", p.ApplicationID) {
		h.logger.Info("Duplicate application decided delivery skipped",
			zap.Int("application_id", p.ApplicationID),
		)
		return nil
	}

	notif := &model.Notification{
		UserID:    p.FreelancerID,
		Type:      "application_decided",
		Content:   fmt.Sprintf("Your application for %q was %s", p.ProjectTitle, strings.ToLower(p.Status)),
		CreatedAt: time.Now(),
	}

	if err := h.repo.Insert(ctx, notif); err != nil {
		h.logger.Error("Failed to insert notification",
			zap.Int("application_id", p.ApplicationID),
			zap.Int("freelancer_id", p.FreelancerID),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementNotification("application_decided")
	return nil
}
