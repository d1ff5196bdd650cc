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

// ProjectStatusChangedHandler keeps the client's feed current with lifecycle
// transitions. This is the push feed that replaced dashboard polling.
type ProjectStatusChangedHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewProjectStatusChangedHandler(repo *repository.NotificationRepository, deduper *util.Deduper, logger *zap.Logger) *ProjectStatusChangedHandler {
	return &ProjectStatusChangedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ProjectStatusChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p contracts.ProjectStatusChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal project status changed payload", zap.Error(err))
		return err
	}

	key, entity := projectStatusChangedKey(p)
	if !h.deduper.AcquireOnce(ctx, key, entity) {
		h.logger.Info("Duplicate status changed delivery skipped",
			zap.Int("project_id", p.ProjectID),
		)
		return nil
	}

	if p.OldStatus == p.NewStatus {
		return nil
	}

	notif := &model.Notification{
		UserID:    p.ClientID,
		Type:      "project_status_changed",
		Content:   fmt.Sprintf("Project %q moved from %s to %s (%d%%)", p.Title, p.OldStatus, p.NewStatus, p.Progress),
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

	metrics.IncrementNotification("project_status_changed")
	return nil
}
