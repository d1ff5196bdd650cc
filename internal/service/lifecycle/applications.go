package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	contracts "talentlink/contracts/mq"
	"talentlink/internal/model"
	"talentlink/pkg/outbox"
	"talentlink/pkg/rbac"
)

// ApplicationInput carries the applicant-supplied fields of a bid.
type ApplicationInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	BidBudget        string `json:"bid_budget"`
	ProposedDeadline string `json:"proposed_deadline"`
	Reason           string `json:"reason"`
}

// Apply submits the acting freelancer's bid on a project. A live (Pending or
// Accepted) application for the same project blocks reapplication; a Rejected
// one does not.
func (s *Service) Apply(ctx context.Context, actor Actor, projectID int, in ApplicationInput) (a *model.Application, err error) {
	defer func() { s.record("apply", err) }()

	if err = requireRole(actor, rbac.RoleFreelancer); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err = requireFields(map[string]string{
		"name":              in.Name,
		"email":             in.Email,
		"bid_budget":        in.BidBudget,
		"proposed_deadline": in.ProposedDeadline,
		"reason":            in.Reason,
	}); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	live, err := s.apps.FindLive(ctx, p.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if live != nil {
		err = ErrDuplicateApplication
		return nil, fmt.Errorf("apply: application %d is %s: %w", live.ID, live.Status, err)
	}

	now := time.Now()
	a = &model.Application{
		ProjectID:        p.ID,
		FreelancerID:     actor.UserID,
		Name:             in.Name,
		Email:            in.Email,
		BidBudget:        in.BidBudget,
		ProposedDeadline: in.ProposedDeadline,
		Reason:           in.Reason,
		Status:           model.ApplicationPending,
		AppliedAt:        now,
		UpdatedAt:        now,
	}

	err = s.apps.Insert(ctx, a, outbox.Pending{
		AggregateType: "application",
		RoutingKey:    contracts.RoutingApplicationSubmitted,
		// the application id is assigned inside the insert, so the payload waits
		Payload: outbox.PayloadFunc(func(id int64) any {
			return contracts.ApplicationSubmittedPayload{
				ApplicationID: int(id),
				ProjectID:     p.ID,
				ClientID:      p.ClientID,
				FreelancerID:  actor.UserID,
				ProjectTitle:  p.Title,
				ApplicantName: in.Name,
				AppliedAt:     now,
			}
		}),
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Application submitted",
		zap.Int("application_id", a.ID),
		zap.Int("project_id", p.ID),
		zap.Int("freelancer_id", actor.UserID),
	)
	return a, nil
}

// AcceptApplication marks a Pending application Accepted. Only the client
// owning the linked project may decide; assignment stays a separate step.
func (s *Service) AcceptApplication(ctx context.Context, actor Actor, applicationID int) (*model.Application, error) {
	return s.decideApplication(ctx, actor, applicationID, model.ApplicationAccepted)
}

// RejectApplication marks a Pending application Rejected, which frees the
// freelancer to reapply later.
func (s *Service) RejectApplication(ctx context.Context, actor Actor, applicationID int) (*model.Application, error) {
	return s.decideApplication(ctx, actor, applicationID, model.ApplicationRejected)
}

func (s *Service) decideApplication(ctx context.Context, actor Actor, applicationID int, decision model.ApplicationStatus) (a *model.Application, err error) {
	defer func() { s.record("decide_application", err) }()

	a, err = s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actor.UserID {
		err = ErrPermission
		return nil, fmt.Errorf("decide_application: %w", err)
	}
	if a.Status != model.ApplicationPending {
		err = ErrInvalidState
		return nil, fmt.Errorf("decide_application: application is %s: %w", a.Status, err)
	}

	a.Status = decision
	a.UpdatedAt = time.Now()

	err = s.apps.Update(ctx, a, outbox.Pending{
		AggregateType: "application",
		AggregateID:   int64(a.ID),
		RoutingKey:    contracts.RoutingApplicationDecided,
		Payload: contracts.ApplicationDecidedPayload{
			ApplicationID: a.ID,
			ProjectID:     p.ID,
			FreelancerID:  a.FreelancerID,
			ProjectTitle:  p.Title,
			Status:        string(decision),
		},
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Application decided",
		zap.Int("application_id", a.ID),
		zap.String("decision", string(decision)),
	)
	return a, nil
}

// ProposeStatus records the freelancer's proposed status for the linked
// project. At most one proposal may be outstanding; a second attempt fails
// with ErrProposalPending and leaves the first untouched.
func (s *Service) ProposeStatus(ctx context.Context, actor Actor, applicationID int, proposed model.ProjectStatus) (a *model.Application, err error) {
	defer func() { s.record("propose_status", err) }()

	a, err = s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a.FreelancerID != actor.UserID {
		err = ErrPermission
		return nil, fmt.Errorf("propose_status: %w", err)
	}
	if proposed != model.StatusInProgress && proposed != model.StatusCompleted {
		err = ErrValidation
		return nil, fmt.Errorf("propose_status: %q is not proposable: %w", proposed, err)
	}
	if a.AwaitingApproval {
		err = ErrProposalPending
		return nil, fmt.Errorf("propose_status: %w", err)
	}

	p, err := s.projects.GetByID(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a.ProposedStatus = proposed
	a.AwaitingApproval = true
	a.ProposedAt = &now
	a.UpdatedAt = now

	err = s.apps.Update(ctx, a, outbox.Pending{
		AggregateType: "application",
		AggregateID:   int64(a.ID),
		RoutingKey:    contracts.RoutingProposalSubmitted,
		Payload: contracts.ProposalSubmittedPayload{
			ApplicationID:  a.ID,
			ProjectID:      p.ID,
			ClientID:       p.ClientID,
			FreelancerID:   a.FreelancerID,
			ProjectTitle:   p.Title,
			ProposedStatus: string(proposed),
			ProposedAt:     now,
		},
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Status proposed",
		zap.Int("application_id", a.ID),
		zap.String("proposed_status", string(proposed)),
	)
	return a, nil
}

// ResolveProposal is the client's verdict on an outstanding status proposal.
// Approval applies the proposed status to the linked project under the same
// rules as UpdateProgress; rejection just clears the proposal. Either way the
// application row and any project change commit together.
func (s *Service) ResolveProposal(ctx context.Context, actor Actor, applicationID int, approve bool) (a *model.Application, err error) {
	defer func() { s.record("resolve_proposal", err) }()

	a, err = s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actor.UserID {
		err = ErrPermission
		return nil, fmt.Errorf("resolve_proposal: %w", err)
	}
	if !a.AwaitingApproval {
		err = ErrInvalidState
		return nil, fmt.Errorf("resolve_proposal: no proposal outstanding: %w", err)
	}

	now := time.Now()
	proposed := a.ProposedStatus

	resolvedEvent := outbox.Pending{
		AggregateType: "application",
		AggregateID:   int64(a.ID),
		RoutingKey:    contracts.RoutingProposalResolved,
		Payload: contracts.ProposalResolvedPayload{
			ApplicationID:  a.ID,
			ProjectID:      p.ID,
			FreelancerID:   a.FreelancerID,
			ProjectTitle:   p.Title,
			ProposedStatus: string(proposed),
			Approved:       approve,
			ResolvedAt:     now,
		},
	}

	if !approve {
		a.AwaitingApproval = false
		a.ProposedStatus = ""
		a.UpdatedAt = now

		if err = s.apps.Update(ctx, a, resolvedEvent); err != nil {
			return nil, err
		}
		return a, nil
	}

	if p.FreelancerID == nil {
		err = ErrInvalidState
		return nil, fmt.Errorf("resolve_proposal: project has no freelancer: %w", err)
	}

	old := p.Status
	switch proposed {
	case model.StatusCompleted:
		applyProgress(p, 100, now)
	case model.StatusInProgress:
		if p.Status == model.StatusCompleted {
			err = ErrInvalidState
			return nil, fmt.Errorf("resolve_proposal: project already completed: %w", err)
		}
		p.Status = model.StatusInProgress
	default:
		err = ErrValidation
		return nil, fmt.Errorf("resolve_proposal: %q is not applicable: %w", proposed, err)
	}
	p.UpdatedAt = now

	a.AwaitingApproval = false
	a.ProposedStatus = ""
	a.UpdatedAt = now

	err = s.apps.UpdateWithProject(ctx, a, p, resolvedEvent, s.statusChangedEvent(p, old))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	s.log(ctx).Info("Proposal resolved",
		zap.Int("application_id", a.ID),
		zap.Int("project_id", p.ID),
		zap.Bool("approved", approve),
		zap.String("project_status", string(p.Status)),
	)
	return a, nil
}

// GetApplication returns one application if the actor may see it: the
// applicant or the client owning the linked project.
func (s *Service) GetApplication(ctx context.Context, actor Actor, applicationID int) (*model.Application, error) {
	a, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a.FreelancerID == actor.UserID {
		return a, nil
	}

	p, err := s.projects.GetByID(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actor.UserID {
		return nil, fmt.Errorf("get_application: %w", ErrPermission)
	}
	return a, nil
}

// ListMyApplications returns the acting freelancer's applications.
func (s *Service) ListMyApplications(ctx context.Context, actor Actor) ([]model.Application, error) {
	if err := requireRole(actor, rbac.RoleFreelancer); err != nil {
		return nil, fmt.Errorf("list_applications: %w", err)
	}
	return s.apps.ListByFreelancer(ctx, actor.UserID)
}

// ListProjectApplications returns all bids on a project the actor owns.
func (s *Service) ListProjectApplications(ctx context.Context, actor Actor, projectID int) ([]model.Application, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actor.UserID {
		return nil, fmt.Errorf("list_applications: %w", ErrPermission)
	}
	return s.apps.ListByProject(ctx, p.ID)
}
