package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	contracts "talentlink/contracts/mq"
	"talentlink/internal/model"
	"talentlink/pkg/outbox"
	"talentlink/pkg/rbac"
)

var (
	client     = Actor{UserID: 1, Role: rbac.RoleClient, Name: "Acme Studio"}
	freelancer = Actor{UserID: 2, Role: rbac.RoleFreelancer, Name: "Jordan"}
	intruder   = Actor{UserID: 99, Role: rbac.RoleClient, Name: "Someone Else"}
)

func newTestService(t *testing.T) (*Service, *fakeProjectRepo, *fakeApplicationRepo, *fakeCache) {
	t.Helper()
	projects := newFakeProjectRepo()
	apps := newFakeApplicationRepo(projects)
	cache := newFakeCache()
	svc := NewService(projects, apps, cache, zap.NewNop())
	return svc, projects, apps, cache
}

func validInput() ProjectInput {
	return ProjectInput{
		Title:       "Logo Design",
		Description: "Design a logo for a coffee brand",
		Budget:      "500",
		Duration:    "2 weeks",
		Skills:      "Illustrator, Branding",
	}
}

func validApplication() ApplicationInput {
	return ApplicationInput{
		Name:             "Jordan",
		Email:            "jordan@example.com",
		BidBudget:        "450",
		ProposedDeadline: "10 days",
		Reason:           "I have designed 30+ logos",
	}
}

func mustCreate(t *testing.T, svc *Service) *model.Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), client, validInput())
	require.NoError(t, err)
	return p
}

func TestCreateProject(t *testing.T) {
	svc, projects, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, client, validInput())
	require.NoError(t, err)

	assert.Equal(t, model.StatusOpen, p.Status)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, 1, p.Version)
	assert.Nil(t, p.FreelancerID)
	assert.Nil(t, p.StartDate)
	assert.Nil(t, p.EndDate)
	require.WithinDuration(t, time.Now(), p.CreatedAt, time.Second)

	assert.Contains(t, projects.eventKeys(), contracts.RoutingProjectCreated)
}

func TestCreateProjectRejectsFreelancer(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateProject(context.Background(), freelancer, validInput())
	require.ErrorIs(t, err, ErrPermission)
}

func TestCreateProjectRequiresAllFields(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	in := validInput()
	in.Budget = "  "
	_, err := svc.CreateProject(context.Background(), client, in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestEditProjectOwnershipAndValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	upd := ProjectUpdate{
		Title:       "Logo Design v2",
		Description: "Updated brief",
		Budget:      "600",
		Duration:    "3 weeks",
		Skills:      "Illustrator",
	}

	_, err := svc.EditProject(ctx, intruder, p.ID, upd)
	require.ErrorIs(t, err, ErrPermission)

	got, err := svc.EditProject(ctx, client, p.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "Logo Design v2", got.Title)
	assert.Equal(t, "600", got.Budget)
}

func TestDeleteProject(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	require.ErrorIs(t, svc.DeleteProject(ctx, intruder, p.ID), ErrPermission)
	require.NoError(t, svc.DeleteProject(ctx, client, p.ID))

	_, err := svc.GetProject(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClearClientProjects(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc)
	mustCreate(t, svc)
	other, err := svc.CreateProject(ctx, intruder, validInput())
	require.NoError(t, err)

	n, err := svc.ClearClientProjects(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// the other client's project survives
	_, err = svc.GetProject(ctx, other.ID)
	require.NoError(t, err)
}

func TestAcquire(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	got, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusAcquired, got.Status)
	require.NotNil(t, got.FreelancerID)
	assert.Equal(t, freelancer.UserID, *got.FreelancerID)
	require.NotNil(t, got.StartDate)
	require.WithinDuration(t, time.Now(), *got.StartDate, time.Second)
}

func TestAcquireOnlyOpenProjects(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	second := Actor{UserID: 3, Role: rbac.RoleFreelancer}
	_, err = svc.Acquire(ctx, second, p.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAcquireRejectsClient(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	p := mustCreate(t, svc)

	_, err := svc.Acquire(context.Background(), client, p.ID)
	require.ErrorIs(t, err, ErrPermission)
}

func TestAssignAndDetach(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	fid := freelancer.UserID
	got, err := svc.Assign(ctx, client, p.ID, &fid)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAcquired, got.Status)
	require.NotNil(t, got.StartDate)

	// detaching reopens the project and clears the start date
	got, err = svc.Assign(ctx, client, p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Nil(t, got.FreelancerID)
	assert.Nil(t, got.StartDate)
}

func TestAssignCompletedProjectFails(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)
	_, err = svc.UpdateProgress(ctx, freelancer, p.ID, 100)
	require.NoError(t, err)

	other := 3
	_, err = svc.Assign(ctx, client, p.ID, &other)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateProgressClampsHigh(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	got, err := svc.UpdateProgress(ctx, freelancer, p.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.EndDate)
}

func TestUpdateProgressClampsLow(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	got, err := svc.UpdateProgress(ctx, freelancer, p.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, model.StatusAcquired, got.Status)
}

func TestUpdateProgressMidway(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	got, err := svc.UpdateProgress(ctx, freelancer, p.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Nil(t, got.EndDate)
}

func TestUpdateProgressReopensCompleted(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)
	_, err = svc.UpdateProgress(ctx, freelancer, p.ID, 100)
	require.NoError(t, err)

	got, err := svc.UpdateProgress(ctx, freelancer, p.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Nil(t, got.EndDate)
}

func TestStartDateSurvivesLaterUpdates(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	acquired, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)
	require.NotNil(t, acquired.StartDate)
	start := *acquired.StartDate

	// progress updates and completion never touch the start date
	got, err := svc.UpdateProgress(ctx, freelancer, p.ID, 60)
	require.NoError(t, err)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, start, *got.StartDate)

	got, err = svc.UpdateProgress(ctx, freelancer, p.ID, 100)
	require.NoError(t, err)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, start, *got.StartDate)
}

func TestProjectLifecycleEndToEnd(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, client, ProjectInput{
		Title:       "Logo Design",
		Description: "Logo for a new cafe",
		Budget:      "$300",
		Duration:    "1 week",
		Skills:      "design",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, p.Status)
	assert.Equal(t, 0, p.Progress)
	assert.Nil(t, p.FreelancerID)

	got, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAcquired, got.Status)
	require.NotNil(t, got.FreelancerID)
	assert.Equal(t, freelancer.UserID, *got.FreelancerID)
	require.NotNil(t, got.StartDate)

	got, err = svc.UpdateProgress(ctx, freelancer, p.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, 60, got.Progress)
	assert.Nil(t, got.EndDate)

	got, err = svc.UpdateProgress(ctx, freelancer, p.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.EndDate)

	// a completed project is closed to reassignment
	other := 3
	_, err = svc.Assign(ctx, client, p.ID, &other)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateProgressOnlyAssignedFreelancer(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.UpdateProgress(ctx, freelancer, p.ID, 50)
	require.ErrorIs(t, err, ErrPermission)

	_, err = svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	other := Actor{UserID: 3, Role: rbac.RoleFreelancer}
	_, err = svc.UpdateProgress(ctx, other, p.ID, 50)
	require.ErrorIs(t, err, ErrPermission)
}

func TestApply(t *testing.T) {
	svc, _, apps, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationPending, a.Status)
	assert.Equal(t, freelancer.UserID, a.FreelancerID)
	assert.False(t, a.AwaitingApproval)
	assert.NotEmpty(t, apps.events)
}

func TestApplyRequiresFreelancer(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	p := mustCreate(t, svc)

	_, err := svc.Apply(context.Background(), client, p.ID, validApplication())
	require.ErrorIs(t, err, ErrPermission)
}

func TestApplyMissingProject(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), freelancer, 404, validApplication())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApplyDuplicateBlocked(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	_, err = svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestApplyAgainAfterRejection(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	_, err = svc.RejectApplication(ctx, client, a.ID)
	require.NoError(t, err)

	// a rejected application does not block a fresh bid
	_, err = svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)
}

func TestDecideApplication(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	_, err = svc.AcceptApplication(ctx, intruder, a.ID)
	require.ErrorIs(t, err, ErrPermission)

	got, err := svc.AcceptApplication(ctx, client, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAccepted, got.Status)

	// a decided application cannot be decided again
	_, err = svc.RejectApplication(ctx, client, a.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestProposeStatus(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	got, err := svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, got.AwaitingApproval)
	assert.Equal(t, model.StatusCompleted, got.ProposedStatus)
	require.NotNil(t, got.ProposedAt)
}

func TestProposeStatusOnlyApplicant(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	other := Actor{UserID: 3, Role: rbac.RoleFreelancer}
	_, err = svc.ProposeStatus(ctx, other, a.ID, model.StatusCompleted)
	require.ErrorIs(t, err, ErrPermission)
}

func TestProposeStatusRestrictedValues(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	_, err = svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusOpen)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSecondProposalBlocked(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	first, err := svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusInProgress)
	require.NoError(t, err)

	_, err = svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusCompleted)
	require.ErrorIs(t, err, ErrProposalPending)

	// the original proposal is untouched
	got, err := svc.GetApplication(ctx, freelancer, a.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ProposedStatus, got.ProposedStatus)
	assert.True(t, got.AwaitingApproval)
}

func TestResolveProposalApproveCompletes(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)
	_, err = svc.AcceptApplication(ctx, client, a.ID)
	require.NoError(t, err)

	fid := freelancer.UserID
	_, err = svc.Assign(ctx, client, p.ID, &fid)
	require.NoError(t, err)

	_, err = svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusCompleted)
	require.NoError(t, err)

	got, err := svc.ResolveProposal(ctx, client, a.ID, true)
	require.NoError(t, err)
	assert.False(t, got.AwaitingApproval)
	assert.Empty(t, string(got.ProposedStatus))

	project, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, project.Status)
	assert.Equal(t, 100, project.Progress)
	require.NotNil(t, project.EndDate)
}

func TestResolveProposalReject(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)
	_, err = svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusCompleted)
	require.NoError(t, err)

	got, err := svc.ResolveProposal(ctx, client, a.ID, false)
	require.NoError(t, err)
	assert.False(t, got.AwaitingApproval)

	// rejection leaves the project alone
	project, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, project.Status)
	assert.Equal(t, 0, project.Progress)
}

func TestResolveProposalNothingOutstanding(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	_, err = svc.ResolveProposal(ctx, client, a.ID, true)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestResolveProposalApproveNeedsFreelancer(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)
	_, err = svc.ProposeStatus(ctx, freelancer, a.ID, model.StatusCompleted)
	require.NoError(t, err)

	// project never assigned, so approval cannot complete it
	_, err = svc.ResolveProposal(ctx, client, a.ID, true)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestListProjectsBySkill(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc)
	other := validInput()
	other.Title = "Backend API"
	other.Skills = "Go, Postgres"
	_, err := svc.CreateProject(ctx, client, other)
	require.NoError(t, err)

	got, err := svc.ListProjects(ctx, ProjectFilter{Skill: "postgres"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Backend API", got[0].Title)
}

func TestGetProjectUsesCache(t *testing.T) {
	svc, projects, _, cache := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	// first read warms the cache
	_, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	_, ok := cache.Get(ctx, p.ID)
	require.True(t, ok)

	// serve from cache even if the row vanishes underneath
	require.NoError(t, projects.Delete(ctx, p.ID))
	got, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestMutationsInvalidateCache(t *testing.T) {
	svc, _, _, cache := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	assert.Contains(t, cache.invalidated, p.ID)
}

func TestGetApplicationVisibility(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	_, err = svc.GetApplication(ctx, freelancer, a.ID)
	require.NoError(t, err)
	_, err = svc.GetApplication(ctx, client, a.ID)
	require.NoError(t, err)

	_, err = svc.GetApplication(ctx, intruder, a.ID)
	require.ErrorIs(t, err, ErrPermission)
}

func findEvent(events []outbox.Pending, routingKey string) (outbox.Pending, bool) {
	for _, e := range events {
		if e.RoutingKey == routingKey {
			return e, true
		}
	}
	return outbox.Pending{}, false
}

func TestInsertEventPayloadsCarryAssignedIDs(t *testing.T) {
	svc, projects, apps, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, client, validInput())
	require.NoError(t, err)

	created, ok := findEvent(projects.events, contracts.RoutingProjectCreated)
	require.True(t, ok)
	assert.Equal(t, int64(p.ID), created.AggregateID)
	createdPayload, ok := created.Payload.(contracts.ProjectCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, p.ID, createdPayload.ProjectID)

	a, err := svc.Apply(ctx, freelancer, p.ID, validApplication())
	require.NoError(t, err)

	submitted, ok := findEvent(apps.events, contracts.RoutingApplicationSubmitted)
	require.True(t, ok)
	assert.Equal(t, int64(a.ID), submitted.AggregateID)
	submittedPayload, ok := submitted.Payload.(contracts.ApplicationSubmittedPayload)
	require.True(t, ok)
	assert.Equal(t, a.ID, submittedPayload.ApplicationID)
	assert.Equal(t, p.ID, submittedPayload.ProjectID)
}

func TestStatusChangedEventEmitted(t *testing.T) {
	svc, projects, _, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc)

	_, err := svc.Acquire(ctx, freelancer, p.ID)
	require.NoError(t, err)

	assert.Contains(t, projects.eventKeys(), contracts.RoutingProjectStatusChanged)
}
