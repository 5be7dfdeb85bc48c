package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

func newRolloverFixture(t *testing.T) (*RolloverService, *storeStub, *memberRepoStub, *archiveRepoStub, *provisionerStub) {
	t.Helper()
	store := newStoreStub()
	members := newMemberRepoStub(
		models.Member{ID: "old@titans.club", Email: "old@titans.club", Name: "Old Pres",
			Position: models.PositionPresident, Role: models.RoleAdmin, HierarchyLevel: 1},
		models.Member{ID: "vp@titans.club", Email: "vp@titans.club", Name: "Vice",
			Position: "Vice President", Role: models.RoleExecutive, HierarchyLevel: 2},
	)
	archives := newArchiveRepoStub()
	provisioner := &provisionerStub{}
	svc := NewRolloverService(NewArchiveCodec(store), members, archives, store,
		provisioner, &auditStub{}, nil, nil, "TITANS")
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return svc, store, members, archives, provisioner
}

func advanceToCredentials(t *testing.T, svc *RolloverService) {
	t.Helper()
	require.NoError(t, svc.Begin())
	require.NoError(t, svc.Confirm())
}

func TestRolloverPhaseTransitions(t *testing.T) {
	svc, _, _, _, _ := newRolloverFixture(t)

	assert.Equal(t, models.RolloverPhaseIdle, svc.Status().Phase)

	// Confirm and Submit are rejected before Begin.
	err := svc.Confirm()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrRolloverState.Code, appErr.Code)

	require.NoError(t, svc.Begin())
	assert.Equal(t, models.RolloverPhaseConfirmPending, svc.Status().Phase)

	// Begin twice is rejected mid-flight.
	require.Error(t, svc.Begin())

	require.NoError(t, svc.Confirm())
	assert.Equal(t, models.RolloverPhaseCredentialCollection, svc.Status().Phase)
}

func TestRolloverCancelBeforeExecution(t *testing.T) {
	svc, store, members, _, _ := newRolloverFixture(t)
	store.seed(models.CollectionNotices, "n1", models.Notice{ID: "n1", Text: "still here"})

	advanceToCredentials(t, svc)
	require.NoError(t, svc.Cancel())

	assert.Equal(t, models.RolloverPhaseIdle, svc.Status().Phase)
	assert.Equal(t, 1, store.count(models.CollectionNotices))
	assert.False(t, members.wiped)
}

func TestRolloverSubmitRequiresAllCredentialFields(t *testing.T) {
	svc, _, _, _, _ := newRolloverFixture(t)
	advanceToCredentials(t, svc)

	err := svc.Submit(context.Background(), models.AdminCredentials{Name: "New", Email: "new@titans.club"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, models.RolloverPhaseCredentialCollection, svc.Status().Phase)
}

func TestRolloverExecuteArchivesWipesAndProvisions(t *testing.T) {
	svc, store, members, archives, provisioner := newRolloverFixture(t)
	store.seed(models.CollectionNotices, "n1", models.Notice{ID: "n1", Text: "farewell"})
	store.seed(models.CollectionTasks, "t1", models.Task{ID: "t1", TaskName: "handover", AssignedTo: "vp"})

	advanceToCredentials(t, svc)
	require.NoError(t, svc.Submit(context.Background(), models.AdminCredentials{
		Name: "New Pres", Email: "new@titans.club", Password: "s3cret",
	}))

	status := svc.Status()
	assert.Equal(t, models.RolloverPhaseComplete, status.Phase)
	assert.Equal(t, "TITANS 2026-2027", status.TermID)
	assert.Empty(t, status.FailedStep)

	// The snapshot holds the outgoing world.
	snapshot, err := archives.Get(context.Background(), "TITANS 2026-2027")
	require.NoError(t, err)
	assert.Len(t, snapshot.Members, 2)
	assert.Len(t, snapshot.CollectionDocs(models.CollectionNotices), 1)
	assert.Len(t, snapshot.CollectionDocs(models.CollectionTasks), 1)

	// The live workspace holds only the incoming President.
	assert.Zero(t, store.count(models.CollectionNotices))
	assert.Zero(t, store.count(models.CollectionTasks))
	roster, err := members.List(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, models.PositionPresident, roster[0].Position)
	assert.Equal(t, "new@titans.club", roster[0].Email)
	assert.Equal(t, models.RoleAdmin, roster[0].Role)
	assert.Equal(t, 1, roster[0].HierarchyLevel)

	assert.Equal(t, []string{"new@titans.club"}, provisioner.created)
}

func TestRolloverSameYearOverwritesArchive(t *testing.T) {
	svc, _, _, archives, _ := newRolloverFixture(t)

	advanceToCredentials(t, svc)
	require.NoError(t, svc.Submit(context.Background(), models.AdminCredentials{
		Name: "First", Email: "first@titans.club", Password: "pw",
	}))

	// A second rollover in the same computed period writes the same term
	// id and replaces the earlier snapshot.
	require.NoError(t, svc.Begin())
	require.NoError(t, svc.Confirm())
	require.NoError(t, svc.Submit(context.Background(), models.AdminCredentials{
		Name: "Second", Email: "second@titans.club", Password: "pw",
	}))

	summaries, err := archives.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, archives.saves)

	snapshot, err := archives.Get(context.Background(), "TITANS 2026-2027")
	require.NoError(t, err)
	require.Len(t, snapshot.Members, 1)
	assert.Equal(t, "first@titans.club", snapshot.Members[0].Email)
}

func TestRolloverArchiveWriteFailureLeavesWorkspaceIntact(t *testing.T) {
	svc, store, members, archives, _ := newRolloverFixture(t)
	store.seed(models.CollectionNotices, "n1", models.Notice{ID: "n1", Text: "safe"})
	archives.saveErr = fmt.Errorf("disk full")

	advanceToCredentials(t, svc)
	err := svc.Submit(context.Background(), models.AdminCredentials{
		Name: "New", Email: "new@titans.club", Password: "pw",
	})
	require.Error(t, err)

	status := svc.Status()
	assert.Equal(t, "archive_write", status.FailedStep)
	assert.NotEmpty(t, status.Error)

	// The workspace is untouched, so the machine returns to credential
	// collection and the operator can resubmit without starting over.
	assert.Equal(t, models.RolloverPhaseCredentialCollection, status.Phase)

	// Nothing was wiped: the archive write is ordered before any deletion.
	assert.Equal(t, 1, store.count(models.CollectionNotices))
	assert.False(t, members.wiped)

	archives.saveErr = nil
	require.NoError(t, svc.Submit(context.Background(), models.AdminCredentials{
		Name: "New", Email: "new@titans.club", Password: "pw",
	}))
	status = svc.Status()
	assert.Equal(t, models.RolloverPhaseComplete, status.Phase)
	assert.Empty(t, status.FailedStep)
	assert.Empty(t, status.Error)
}

func TestRolloverWipeFailureKeepsArchive(t *testing.T) {
	svc, store, _, archives, provisioner := newRolloverFixture(t)
	store.seed(models.CollectionEvents, "e1", models.Event{ID: "e1", Title: "gala", Date: "2026-09-01"})
	store.failWipe[models.CollectionEvents] = fmt.Errorf("timeout")

	advanceToCredentials(t, svc)
	err := svc.Submit(context.Background(), models.AdminCredentials{
		Name: "New", Email: "new@titans.club", Password: "pw",
	})
	require.Error(t, err)

	status := svc.Status()
	assert.Equal(t, "wipe:"+models.CollectionEvents, status.FailedStep)

	// A post-wipe failure must not reopen credential collection; the run
	// stays parked until the operator begins a fresh rollover.
	assert.Equal(t, models.RolloverPhaseArchiving, status.Phase)

	// The snapshot landed before the failed wipe, so nothing is lost.
	_, getErr := archives.Get(context.Background(), "TITANS 2026-2027")
	require.NoError(t, getErr)
	assert.Empty(t, provisioner.created, "no president may be provisioned after an aborted wipe")
}

func TestRolloverRetryAllowedAfterFailure(t *testing.T) {
	svc, _, _, archives, _ := newRolloverFixture(t)
	archives.saveErr = fmt.Errorf("disk full")

	advanceToCredentials(t, svc)
	require.Error(t, svc.Submit(context.Background(), models.AdminCredentials{
		Name: "New", Email: "new@titans.club", Password: "pw",
	}))

	// Begin is allowed again once the previous run failed.
	archives.saveErr = nil
	require.NoError(t, svc.Begin())
	require.NoError(t, svc.Confirm())
	require.NoError(t, svc.Submit(context.Background(), models.AdminCredentials{
		Name: "New", Email: "new@titans.club", Password: "pw",
	}))
	assert.Equal(t, models.RolloverPhaseComplete, svc.Status().Phase)
}
