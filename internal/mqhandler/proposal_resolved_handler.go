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

// ProposalResolvedHandler tells the freelancer the client's verdict.
type ProposalResolvedHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewProposalResolvedHandler(repo *repository.NotificationRepository, deduper *util.Deduper, logger *zap.Logger) *ProposalResolvedHandler {
	return &ProposalResolvedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ProposalResolvedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p contracts.ProposalResolvedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal proposal resolved payload", zap.Error(err))
		return err
	}

	key, entity := proposalResolvedKey(p)
	if !h.deduper.AcquireOnce(ctx, key, entity) {
		h.logger.Info("Duplicate proposal resolved delivery skipped",
			zap.Int("application_id", p.ApplicationID),
		)
		return nil
	}

	verdict := "rejected"
	if p.Approved {
		verdict = "approved"
	}
	notif := &model.Notification{
		UserID:    p.FreelancerID,
		Type:      "proposal_resolved",
		Content:   fmt.Sprintf("Your proposal to mark %q as %q was %s", p.ProjectTitle, p.ProposedStatus, verdict),
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

	metrics.IncrementNotification("proposal_resolved")
	return nil
}
