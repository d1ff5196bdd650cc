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

// ProjectInput carries the fields a client sets when posting a project.
type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	Duration    string `json:"duration"`
	Skills      string `json:"skills"`
}

// ProjectUpdate lists exactly the client-editable fields. Status, progress and
// freelancer attachment move only through their dedicated operations.
type ProjectUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	Duration    string `json:"duration"`
	Skills      string `json:"skills"`
}

// CreateProject posts a new Open project owned by the acting client.
func (s *Service) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (p *model.Project, err error) {
	defer func() { s.record("create_project", err) }()

	if err = requireRole(actor, rbac.RoleClient); err != nil {
		return nil, fmt.Errorf("create_project: %w", err)
	}
	if err = requireFields(map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"budget":      in.Budget,
		"duration":    in.Duration,
		"skills":      in.Skills,
	}); err != nil {
		return nil, fmt.Errorf("create_project: %w", err)
	}

	now := time.Now()
	p = &model.Project{
		ClientID:    actor.UserID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Duration:    in.Duration,
		Skills:      in.Skills,
		Status:      model.StatusOpen,
		Progress:    0,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.projects.Insert(ctx, p, outbox.Pending{
		AggregateType: "project",
		RoutingKey:    contracts.RoutingProjectCreated,
		// the project id is assigned inside the insert, so the payload waits
		Payload: outbox.PayloadFunc(func(id int64) any {
			return contracts.ProjectCreatedPayload{
				ProjectID: int(id),
				ClientID:  p.ClientID,
				Title:     p.Title,
				Skills:    p.Skills,
				CreatedAt: p.CreatedAt,
			}
		}),
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Project created",
		zap.Int("project_id", p.ID),
		zap.Int("client_id", p.ClientID),
		zap.String("title", p.Title),
	)
	return p, nil
}

// EditProject updates the editable fields of a project owned by the actor.
func (s *Service) EditProject(ctx context.Context, actor Actor, projectID int, upd ProjectUpdate) (p *model.Project, err error) {
	defer func() { s.record("edit_project", err) }()

	p, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actor.UserID {
		err = ErrPermission
		return nil, fmt.Errorf("edit_project: %w", err)
	}
	if err = requireFields(map[string]string{
		"title":       upd.Title,
		"description": upd.Description,
		"budget":      upd.Budget,
		"duration":    upd.Duration,
		"skills":      upd.Skills,
	}); err != nil {
		return nil, fmt.Errorf("edit_project: %w", err)
	}

	p.Title = upd.Title
	p.Description = upd.Description
	p.Budget = upd.Budget
	p.Duration = upd.Duration
	p.Skills = upd.Skills
	p.UpdatedAt = time.Now()

	err = s.projects.Update(ctx, p, outbox.Pending{
		AggregateType: "project",
		AggregateID:   int64(p.ID),
		RoutingKey:    contracts.RoutingProjectUpdated,
		Payload: contracts.ProjectUpdatedPayload{
			ProjectID: p.ID,
			ClientID:  p.ClientID,
			Title:     p.Title,
			UpdatedAt: p.UpdatedAt,
		},
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	return p, nil
}

// DeleteProject permanently removes a project owned by the actor.
func (s *Service) DeleteProject(ctx context.Context, actor Actor, projectID int) (err error) {
	defer func() { s.record("delete_project", err) }()

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.ClientID != actor.UserID {
		err = ErrPermission
		return fmt.Errorf("delete_project: %w", err)
	}

	err = s.projects.Delete(ctx, p.ID, outbox.Pending{
		AggregateType: "project",
		AggregateID:   int64(p.ID),
		RoutingKey:    contracts.RoutingProjectDeleted,
		Payload: contracts.ProjectDeletedPayload{
			ProjectID: p.ID,
			ClientID:  p.ClientID,
			Title:     p.Title,
		},
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, p.ID)
	s.log(ctx).Info("Project deleted",
		zap.Int("project_id", p.ID),
		zap.Int("client_id", p.ClientID),
	)
	return nil
}

// ClearClientProjects removes every project the acting client owns. This is
// the "clear all" control from the project manager page, scoped to the owner.
func (s *Service) ClearClientProjects(ctx context.Context, actor Actor) (n int, err error) {
	defer func() { s.record("clear_projects", err) }()

	if err = requireRole(actor, rbac.RoleClient); err != nil {
		return 0, fmt.Errorf("clear_projects: %w", err)
	}

	n, err = s.projects.DeleteByClient(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}

	s.log(ctx).Info("Client projects cleared",
		zap.Int("client_id", actor.UserID),
		zap.Int("deleted", n),
	)
	return n, nil
}

// Acquire attaches the acting freelancer to an Open project.
func (s *Service) Acquire(ctx context.Context, actor Actor, projectID int) (p *model.Project, err error) {
	defer func() { s.record("acquire", err) }()

	if err = requireRole(actor, rbac.RoleFreelancer); err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	p, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.StatusOpen {
		err = ErrInvalidState
		return nil, fmt.Errorf("acquire: project is %s: %w", p.Status, err)
	}

	now := time.Now()
	old := p.Status
	freelancerID := actor.UserID
	p.FreelancerID = &freelancerID
	p.Status = model.StatusAcquired
	if p.StartDate == nil {
		p.StartDate = &now
	}
	p.UpdatedAt = now

	err = s.projects.Update(ctx, p, s.statusChangedEvent(p, old))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	s.log(ctx).Info("Project acquired",
		zap.Int("project_id", p.ID),
		zap.Int("freelancer_id", actor.UserID),
	)
	return p, nil
}

// Assign lets the owning client attach a freelancer, or detach with a nil id,
// which reopens the project. Completed projects cannot be reassigned.
func (s *Service) Assign(ctx context.Context, actor Actor, projectID int, freelancerID *int) (p *model.Project, err error) {
	defer func() { s.record("assign", err) }()

	if err = requireRole(actor, rbac.RoleClient); err != nil {
		return nil, fmt.Errorf("assign: %w", err)
	}

	p, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actor.UserID {
		err = ErrPermission
		return nil, fmt.Errorf("assign: %w", err)
	}
	if p.Status == model.StatusCompleted {
		err = ErrInvalidState
		return nil, fmt.Errorf("assign: project is completed: %w", err)
	}

	now := time.Now()
	old := p.Status
	if freelancerID != nil {
		id := *freelancerID
		p.FreelancerID = &id
		p.Status = model.StatusAcquired
		if p.StartDate == nil {
			p.StartDate = &now
		}
	} else {
		p.FreelancerID = nil
		p.Status = model.StatusOpen
		p.StartDate = nil
	}
	p.UpdatedAt = now

	err = s.projects.Update(ctx, p, s.statusChangedEvent(p, old))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	return p, nil
}

// UpdateProgress records progress by the assigned freelancer. Values clamp to
// [0,100]; 100 completes the project and stamps the end date, any positive
// value below 100 puts it in progress, zero leaves the status alone.
func (s *Service) UpdateProgress(ctx context.Context, actor Actor, projectID int, newProgress int) (p *model.Project, err error) {
	defer func() { s.record("update_progress", err) }()

	p, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.FreelancerID == nil || *p.FreelancerID != actor.UserID {
		err = ErrPermission
		return nil, fmt.Errorf("update_progress: %w", err)
	}

	now := time.Now()
	old := p.Status
	applyProgress(p, clampProgress(newProgress), now)
	p.UpdatedAt = now

	err = s.projects.Update(ctx, p, s.statusChangedEvent(p, old))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	return p, nil
}

// GetProject returns a project, served from the snapshot cache when warm.
func (s *Service) GetProject(ctx context.Context, projectID int) (*model.Project, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, projectID); ok {
			return p, nil
		}
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, p)
	}
	return p, nil
}

// ListProjects returns projects matching the filter, newest first.
func (s *Service) ListProjects(ctx context.Context, f ProjectFilter) ([]model.Project, error) {
	return s.projects.List(ctx, f)
}

// applyProgress is the progress-to-status rule shared by UpdateProgress and
// proposal approval. progress must already be clamped.
func applyProgress(p *model.Project, progress int, now time.Time) {
	p.Progress = progress
	switch {
	case progress >= 100:
		if p.Status != model.StatusCompleted {
			p.Status = model.StatusCompleted
			p.EndDate = &now
		}
	case progress > 0:
		p.Status = model.StatusInProgress
		p.EndDate = nil
	default:
		// zero progress leaves the status alone, except that a Completed
		// project cannot stay Completed with progress below 100
		if p.Status == model.StatusCompleted {
			p.Status = model.StatusAcquired
			p.EndDate = nil
		}
	}
}

func (s *Service) statusChangedEvent(p *model.Project, old model.ProjectStatus) outbox.Pending {
	payload := contracts.ProjectStatusChangedPayload{
		ProjectID: p.ID,
		ClientID:  p.ClientID,
		Title:     p.Title,
		OldStatus: string(old),
		NewStatus: string(p.Status),
		Progress:  p.Progress,
		ChangedAt: p.UpdatedAt,
	}
	if p.FreelancerID != nil {
		payload.FreelancerID = *p.FreelancerID
	}
	return outbox.Pending{
		AggregateType: "project",
		AggregateID:   int64(p.ID),
		RoutingKey:    contracts.RoutingProjectStatusChanged,
		Payload:       payload,
	}
}
