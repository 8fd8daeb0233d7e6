package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/repository/postgres"
	"github.com/jortiz/teammatch/internal/service"
	"github.com/jortiz/teammatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectService(t *testing.T) (*service.ProjectService, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	notifications := service.NewNotificationService(repos.Notification, testutil.TestLogger())
	svc := service.NewProjectService(repos.Project, repos.Membership, notifications)
	return svc, testDB
}

func TestProjectService_CreateProject(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	project, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{
		Title:       "Realtime chat backend",
		Description: "Go + websockets",
	})
	require.NoError(t, err)
	require.NotNil(t, project)

	assert.Equal(t, creator.ID, project.CreatedBy)
	assert.Equal(t, domain.ProjectStatusActive, project.Status)
	require.Len(t, project.Members, 1)
	assert.Equal(t, domain.RoleLeader, project.Members[0].Role)

	var refreshed domain.User
	require.NoError(t, testDB.DB.First(&refreshed, "id = ?", creator.ID).Error)
	assert.Equal(t, 1, refreshed.ActiveProjectCount)
}

func TestProjectService_CreateProject_EmptyTitle(t *testing.T) {
	svc, testDB := newProjectService(t)
	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := svc.CreateProject(context.Background(), creator.ID, service.CreateProjectInput{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProjectService_CapEnforcement(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	for i := 0; i < domain.MaxActiveProjects; i++ {
		_, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "project"})
		require.NoError(t, err)
	}

	// Third project creation hits the cap.
	_, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "one too many"})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	// Joining someone else's project is equally rejected at the cap.
	project, err := svc.CreateProject(ctx, other.ID, service.CreateProjectInput{Title: "open seat"})
	require.NoError(t, err)
	_, err = svc.JoinProject(ctx, creator.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestProjectService_JoinProject(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	joiner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	project, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "p"})
	require.NoError(t, err)

	membership, err := svc.JoinProject(ctx, joiner.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, membership.Role)

	// Duplicate join is a conflict.
	_, err = svc.JoinProject(ctx, joiner.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Unknown project.
	_, err = svc.JoinProject(ctx, joiner.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var refreshed domain.User
	require.NoError(t, testDB.DB.First(&refreshed, "id = ?", joiner.ID).Error)
	assert.Equal(t, 1, refreshed.ActiveProjectCount)
}

func TestProjectService_JoinProject_NotActive(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	joiner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	project, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "p"})
	require.NoError(t, err)
	_, err = svc.CompleteProject(ctx, creator.ID, project.ID)
	require.NoError(t, err)

	_, err = svc.JoinProject(ctx, joiner.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestProjectService_ConcurrentJoins_NeverOvershootCap(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	joiner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	projects := make([]uuid.UUID, 3)
	for i := range projects {
		creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
		p, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "p"})
		require.NoError(t, err)
		projects[i] = p.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, len(projects))
	for i, projectID := range projects {
		wg.Add(1)
		go func(i int, projectID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.JoinProject(ctx, joiner.ID, projectID)
		}(i, projectID)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one join must be rejected at the cap")

	var refreshed domain.User
	require.NoError(t, testDB.DB.First(&refreshed, "id = ?", joiner.ID).Error)
	assert.Equal(t, domain.MaxActiveProjects, refreshed.ActiveProjectCount)
}

func TestProjectService_LeaveProject(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	member, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	project, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "p"})
	require.NoError(t, err)
	_, err = svc.JoinProject(ctx, member.ID, project.ID)
	require.NoError(t, err)

	require.NoError(t, svc.LeaveProject(ctx, member.ID, project.ID))

	var refreshed domain.User
	require.NoError(t, testDB.DB.First(&refreshed, "id = ?", member.ID).Error)
	assert.Equal(t, 0, refreshed.ActiveProjectCount)

	// No membership left to delete.
	err = svc.LeaveProject(ctx, member.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_LeaveCompletedProject_NoDecrement(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	member, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	project, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "p"})
	require.NoError(t, err)
	_, err = svc.JoinProject(ctx, member.ID, project.ID)
	require.NoError(t, err)

	_, err = svc.CompleteProject(ctx, creator.ID, project.ID)
	require.NoError(t, err)

	// Completion already decremented; leaving afterwards must not go
	// below zero or double-decrement.
	require.NoError(t, svc.LeaveProject(ctx, member.ID, project.ID))

	var refreshed domain.User
	require.NoError(t, testDB.DB.First(&refreshed, "id = ?", member.ID).Error)
	assert.Equal(t, 0, refreshed.ActiveProjectCount)
}

func TestProjectService_CompleteProject(t *testing.T) {
	svc, testDB := newProjectService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	memberA, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	memberB, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	project, err := svc.CreateProject(ctx, creator.ID, service.CreateProjectInput{Title: "p"})
	require.NoError(t, err)
	_, err = svc.JoinProject(ctx, memberA.ID, project.ID)
	require.NoError(t, err)
	_, err = svc.JoinProject(ctx, memberB.ID, project.ID)
	require.NoError(t, err)

	// Non-creator cannot complete.
	_, err = svc.CompleteProject(ctx, memberA.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	completed, err := svc.CompleteProject(ctx, creator.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	// Every member was decremented in the same transaction.
	for _, id := range []uuid.UUID{creator.ID, memberA.ID, memberB.ID} {
		var u domain.User
		require.NoError(t, testDB.DB.First(&u, "id = ?", id).Error)
		assert.Equal(t, 0, u.ActiveProjectCount, "user %s", id)
	}

	// Completion is terminal.
	_, err = svc.CompleteProject(ctx, creator.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProjectService_ActiveCountMatchesMemberships(t *testing.T) {
	svc, testDB := newProjectService(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	own, err := svc.CreateProject(ctx, user.ID, service.CreateProjectInput{Title: "own"})
	require.NoError(t, err)
	theirs, err := svc.CreateProject(ctx, other.ID, service.CreateProjectInput{Title: "theirs"})
	require.NoError(t, err)
	_, err = svc.JoinProject(ctx, user.ID, theirs.ID)
	require.NoError(t, err)

	assertInvariant := func() {
		t.Helper()
		var u domain.User
		require.NoError(t, testDB.DB.First(&u, "id = ?", user.ID).Error)
		count, err := repos.Membership.CountActiveByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(u.ActiveProjectCount), count)
	}

	assertInvariant()

	_, err = svc.CompleteProject(ctx, user.ID, own.ID)
	require.NoError(t, err)
	assertInvariant()

	require.NoError(t, svc.LeaveProject(ctx, user.ID, theirs.ID))
	assertInvariant()
}
