package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

func newMemberFixture(t *testing.T) (*MemberService, *memberRepoStub) {
	t.Helper()
	repo := newMemberRepoStub(
		models.Member{ID: "pres@titans.club", Email: "pres@titans.club", Name: "Pres",
			Position: models.PositionPresident, Team: models.TeamCore, Role: models.RoleAdmin,
			HierarchyLevel: 1, Status: models.MemberStatusActive},
		models.Member{ID: "tech@titans.club", Email: "tech@titans.club", Name: "Tess",
			Position: "Technical Head", Team: models.TeamTechnical, Role: models.RoleExecutive,
			HierarchyLevel: 3, Status: models.MemberStatusActive},
	)
	return NewMemberService(repo, &auditStub{}, nil, nil), repo
}

func TestMemberListPrefersBinding(t *testing.T) {
	svc, _ := newMemberFixture(t)
	binding := &models.WorkspaceSnapshot{
		TermID: "TITANS 2024-2025",
		Members: []models.Member{
			{Email: "b@titans.club", HierarchyLevel: 5},
			{Email: "a@titans.club", HierarchyLevel: 1},
		},
	}

	members, err := svc.List(context.Background(), binding)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a@titans.club", members[0].Email, "archived roster sorts by hierarchy too")
}

func TestMemberCreateRejectsDuplicate(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Create(context.Background(), models.Member{
		Email: "Tech@Titans.Club", Name: "Clone", Position: "Technical Head",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrIdentityConflict.Code, appErr.Code)
}

func TestMemberCreateDerivesTeamAndDefaults(t *testing.T) {
	svc, repo := newMemberFixture(t)

	created, err := svc.Create(context.Background(), models.Member{
		Email: "new@titans.club", Name: "Newt", Position: "Social Media Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TeamMultimedia, created.Team)
	assert.Equal(t, models.RoleMember, created.Role)
	assert.Equal(t, 99, created.HierarchyLevel)
	assert.Equal(t, models.MemberStatusActive, created.Status)

	stored, err := repo.FindByEmail(context.Background(), "new@titans.club")
	require.NoError(t, err)
	assert.Equal(t, "new@titans.club", stored.ID)
}

func TestPresidentCannotBeDeleted(t *testing.T) {
	svc, repo := newMemberFixture(t)

	err := svc.Delete(context.Background(), "pres@titans.club")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPresidentLocked.Code, appErr.Code)

	_, err = repo.FindByEmail(context.Background(), "pres@titans.club")
	require.NoError(t, err)

	// Ordinary members still delete fine.
	require.NoError(t, svc.Delete(context.Background(), "tech@titans.club"))
}

func TestPresidentCannotBeDemotedViaUpdate(t *testing.T) {
	svc, _ := newMemberFixture(t)

	_, err := svc.Update(context.Background(), "pres@titans.club", models.Member{
		Name: "Pres", Position: "Member",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPresidentLocked.Code, appErr.Code)
}

func TestDraftUndoRedo(t *testing.T) {
	svc, _ := newMemberFixture(t)
	ctx := context.Background()

	draft, err := svc.BeginDraft(ctx)
	require.NoError(t, err)
	require.Len(t, draft, 2)

	draft, err = svc.StageUpsert(models.Member{Email: "new@titans.club", Name: "Newt", Position: "Designer"})
	require.NoError(t, err)
	assert.Len(t, draft, 3)

	draft, err = svc.StageDelete("tech@titans.club")
	require.NoError(t, err)
	assert.Len(t, draft, 2)

	// Undo the deletion, then the addition.
	draft, err = svc.Undo()
	require.NoError(t, err)
	assert.Len(t, draft, 3)
	draft, err = svc.Undo()
	require.NoError(t, err)
	assert.Len(t, draft, 2)

	_, err = svc.Undo()
	require.Error(t, err, "undo past the seed state is rejected")

	// Redo restores the addition.
	draft, err = svc.Redo()
	require.NoError(t, err)
	assert.Len(t, draft, 3)

	// A fresh edit clears the redo stack.
	_, err = svc.StageUpsert(models.Member{Email: "fresh@titans.club", Name: "F", Position: "Anchor"})
	require.NoError(t, err)
	_, err = svc.Redo()
	require.Error(t, err)
}

func TestDraftPresidentLock(t *testing.T) {
	svc, _ := newMemberFixture(t)
	_, err := svc.BeginDraft(context.Background())
	require.NoError(t, err)

	_, err = svc.StageDelete("pres@titans.club")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPresidentLocked.Code, appErr.Code)

	// The failed stage left no undo frame behind.
	_, err = svc.Undo()
	require.Error(t, err)
}

func TestDraftCommitAppliesDiff(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	_, err := svc.BeginDraft(ctx)
	require.NoError(t, err)
	_, err = svc.StageUpsert(models.Member{Email: "new@titans.club", Name: "Newt", Position: "Designer"})
	require.NoError(t, err)
	_, err = svc.StageDelete("tech@titans.club")
	require.NoError(t, err)

	require.NoError(t, svc.CommitDraft(ctx, models.JWTClaims{Name: "Pres", Role: models.RoleAdmin}))

	_, err = repo.FindByEmail(ctx, "new@titans.club")
	require.NoError(t, err)
	_, err = repo.FindByEmail(ctx, "tech@titans.club")
	require.Error(t, err)
	_, err = repo.FindByEmail(ctx, "pres@titans.club")
	require.NoError(t, err)

	// The draft closed on commit.
	_, err = svc.DraftMembers()
	require.Error(t, err)
}
