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

// ProposalSubmittedHandler asks the client to review a status proposal.
type ProposalSubmittedHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewProposalSubmittedHandler(repo *repository.NotificationRepository, deduper *util.Deduper, logger *zap.Logger) *ProposalSubmittedHandler {
	return &ProposalSubmittedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ProposalSubmittedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p contracts.ProposalSubmittedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal proposal submitted payload", zap.Error(err))
		return err
	}

	key, entity := proposalSubmittedKey(p)
	if !h.deduper.AcquireOnce(ctx, key, entity) {
		h.logger.Info("Duplicate proposal submitted delivery skipped",
			zap.Int("application_id", p.ApplicationID),
		)
		return nil
	}

	notif := &model.Notification{
		UserID:    p.ClientID,
		Type:      "proposal_submitted",
		Content:   fmt.Sprintf("The freelancer on %q proposed status %q, awaiting your approval", p.ProjectTitle, p.ProposedStatus),
		CreatedAt: time.Now(),
	}

	if err := h.repo.Insert(ctx, notif); err != nil {
		h.logger.Error("Failed to insert notification",
			zap.Int("application_id", p.ApplicationID),
			zap.Int("client_id", p.ClientID),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementNotification("proposal_submitted")
	return nil
}
