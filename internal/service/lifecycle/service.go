package lifecycle

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"talentlink/internal/model"
	"talentlink/pkg/logger"
	"talentlink/pkg/metrics"
	"talentlink/pkg/outbox"
)

// Actor is the verified identity making a call. It comes from the JWT
// middleware, never from request bodies.
type Actor struct {
	UserID int
	Role   string
	Name   string
}

// ProjectFilter narrows List results. Zero values mean "no filter".
type ProjectFilter struct {
	Skill        string
	Status       model.ProjectStatus
	ClientID     int
	FreelancerID int
}

// ProjectRepository persists projects. Mutating methods also record the given
// outbox events in the same transaction as the row write. Update must check
// the project's Version and return ErrVersionConflict on a stale write.
type ProjectRepository interface {
	Insert(ctx context.Context, p *model.Project, events ...outbox.Pending) error
	Update(ctx context.Context, p *model.Project, events ...outbox.Pending) error
	Delete(ctx context.Context, projectID int, events ...outbox.Pending) error
	DeleteByClient(ctx context.Context, clientID int) (int, error)
	GetByID(ctx context.Context, projectID int) (*model.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]model.Project, error)
}

// ApplicationRepository persists applications. FindLive returns the Pending or
// Accepted application for a (project, freelancer) pair, or nil if none.
// UpdateWithProject commits an application row and a project row atomically.
type ApplicationRepository interface {
	Insert(ctx context.Context, a *model.Application, events ...outbox.Pending) error
	Update(ctx context.Context, a *model.Application, events ...outbox.Pending) error
	UpdateWithProject(ctx context.Context, a *model.Application, p *model.Project, events ...outbox.Pending) error
	GetByID(ctx context.Context, applicationID int) (*model.Application, error)
	FindLive(ctx context.Context, projectID, freelancerID int) (*model.Application, error)
	ListByFreelancer(ctx context.Context, freelancerID int) ([]model.Application, error)
	ListByProject(ctx context.Context, projectID int) ([]model.Application, error)
}

// ProjectCache is an optional read cache for project snapshots. The store
// invalidates on every mutation; staleness within the TTL is acceptable and
// marked on the cached entry itself.
type ProjectCache interface {
	Get(ctx context.Context, projectID int) (*model.Project, bool)
	Set(ctx context.Context, p *model.Project)
	Invalidate(ctx context.Context, projectID int)
}

// Service is the authoritative project lifecycle store. All dashboards go
// through it; the old per-page localStorage copies are gone.
type Service struct {
	projects ProjectRepository
	apps     ApplicationRepository
	cache    ProjectCache
	logger   *zap.Logger
}

func NewService(projects ProjectRepository, apps ApplicationRepository, cache ProjectCache, logger *zap.Logger) *Service {
	return &Service{
		projects: projects,
		apps:     apps,
		cache:    cache,
		logger:   logger,
	}
}

func (s *Service) record(operation string, err error) {
	metrics.RecordLifecycleOperation(operation, outcome(err))
}

// log returns the service logger annotated with the request's trace id.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.WithTrace(ctx, s.logger)
}

func (s *Service) invalidate(ctx context.Context, projectID int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
}

func requireRole(actor Actor, role string) error {
	if actor.Role != role {
		return ErrPermission
	}
	return nil
}

func requireFields(fields map[string]string) error {
	for _, v := range fields {
		if strings.TrimSpace(v) == "" {
			return ErrValidation
		}
	}
	return nil
}

func clampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
