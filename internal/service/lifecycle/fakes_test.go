package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"talentlink/internal/model"
	"talentlink/pkg/outbox"
)

// recordEvents mimics the Postgres repositories: fill in the aggregate id,
// then resolve any deferred payload.
func recordEvents(aggregateID int64, events []outbox.Pending) []outbox.Pending {
	out := make([]outbox.Pending, 0, len(events))
	for _, e := range events {
		if e.AggregateID == 0 {
			e.AggregateID = aggregateID
		}
		out = append(out, e.Materialize())
	}
	return out
}

// fakeProjectRepo is an in-memory ProjectRepository with the same version
// semantics as the Postgres one.
type fakeProjectRepo struct {
	mu       sync.Mutex
	nextID   int
	projects map[int]*model.Project
	events   []outbox.Pending
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[int]*model.Project)}
}

func (f *fakeProjectRepo) Insert(_ context.Context, p *model.Project, events ...outbox.Pending) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.projects[p.ID] = &cp
	f.events = append(f.events, recordEvents(int64(p.ID), events)...)
	return nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *model.Project, events ...outbox.Pending) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.projects[p.ID]
	if !ok {
		return fmt.Errorf("project %d: %w", p.ID, ErrNotFound)
	}
	if stored.Version != p.Version {
		return fmt.Errorf("project %d at version %d: %w", p.ID, p.Version, ErrVersionConflict)
	}
	p.Version++
	cp := *p
	f.projects[p.ID] = &cp
	f.events = append(f.events, recordEvents(int64(p.ID), events)...)
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, projectID int, events ...outbox.Pending) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.projects[projectID]; !ok {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	delete(f.projects, projectID)
	f.events = append(f.events, recordEvents(int64(projectID), events)...)
	return nil
}

func (f *fakeProjectRepo) DeleteByClient(_ context.Context, clientID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for id, p := range f.projects {
		if p.ClientID == clientID {
			delete(f.projects, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, projectID int) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) List(_ context.Context, filter ProjectFilter) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Project
	for _, p := range f.projects {
		if filter.Skill != "" && !strings.Contains(strings.ToLower(p.Skills), strings.ToLower(filter.Skill)) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ClientID != 0 && p.ClientID != filter.ClientID {
			continue
		}
		if filter.FreelancerID != 0 && (p.FreelancerID == nil || *p.FreelancerID != filter.FreelancerID) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProjectRepo) eventKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.events))
	for _, e := range f.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}

// fakeApplicationRepo backs ApplicationRepository; UpdateWithProject writes
// through to the project repo the way the real transaction does.
type fakeApplicationRepo struct {
	mu       sync.Mutex
	nextID   int
	apps     map[int]*model.Application
	projects *fakeProjectRepo
	events   []outbox.Pending
}

func newFakeApplicationRepo(projects *fakeProjectRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		apps:     make(map[int]*model.Application),
		projects: projects,
	}
}

func (f *fakeApplicationRepo) Insert(_ context.Context, a *model.Application, events ...outbox.Pending) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.apps[a.ID] = &cp
	f.events = append(f.events, recordEvents(int64(a.ID), events)...)
	return nil
}

func (f *fakeApplicationRepo) Update(_ context.Context, a *model.Application, events ...outbox.Pending) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.apps[a.ID]; !ok {
		return fmt.Errorf("application %d: %w", a.ID, ErrNotFound)
	}
	cp := *a
	f.apps[a.ID] = &cp
	f.events = append(f.events, recordEvents(int64(a.ID), events)...)
	return nil
}

func (f *fakeApplicationRepo) UpdateWithProject(ctx context.Context, a *model.Application, p *model.Project, events ...outbox.Pending) error {
	if err := f.Update(ctx, a, events...); err != nil {
		return err
	}
	return f.projects.Update(ctx, p)
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, applicationID int) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.apps[applicationID]
	if !ok {
		return nil, fmt.Errorf("application %d: %w", applicationID, ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplicationRepo) FindLive(_ context.Context, projectID, freelancerID int) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.apps {
		if a.ProjectID == projectID && a.FreelancerID == freelancerID && a.Status != model.ApplicationRejected {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApplicationRepo) ListByFreelancer(_ context.Context, freelancerID int) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Application
	for _, a := range f.apps {
		if a.FreelancerID == freelancerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) ListByProject(_ context.Context, projectID int) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Application
	for _, a := range f.apps {
		if a.ProjectID == projectID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// fakeCache records invalidations so tests can assert mutations clear it.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[int]*model.Project
	invalidated []int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int]*model.Project)}
}

func (f *fakeCache) Get(_ context.Context, projectID int) (*model.Project, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.entries[projectID]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (f *fakeCache) Set(_ context.Context, p *model.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *p
	f.entries[p.ID] = &cp
}

func (f *fakeCache) Invalidate(_ context.Context, projectID int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, projectID)
	f.invalidated = append(f.invalidated, projectID)
}
