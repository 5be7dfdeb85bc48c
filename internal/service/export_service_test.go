package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

func TestExportRosterCSVFromLiveWorkspace(t *testing.T) {
	members := newMemberRepoStub(
		models.Member{Email: "pres@titans.club", Name: "Asha", Position: models.PositionPresident,
			Team: models.TeamCore, Role: models.RoleAdmin, HierarchyLevel: 1},
		models.Member{Email: "vee@titans.club", Name: "Vee", Position: "Technical Head",
			Team: "Technical", Role: models.RoleExecutive, HierarchyLevel: 3},
	)
	svc := NewExportService(members, newArchiveRepoStub(), nil, nil, nil)

	result, err := svc.Roster(context.Background(), nil, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "roster.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "pres@titans.club") // hierarchy order
	assert.Contains(t, lines[2], "vee@titans.club")
}

func TestExportRosterUsesBoundArchive(t *testing.T) {
	svc := NewExportService(newMemberRepoStub(), newArchiveRepoStub(), nil, nil, nil)
	binding := &models.WorkspaceSnapshot{
		TermID: "TITANS 2024-2025",
		Members: []models.Member{
			{Email: "then@titans.club", Name: "Then Pres", Position: models.PositionPresident, HierarchyLevel: 1},
		},
	}

	result, err := svc.Roster(context.Background(), binding, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "roster-TITANS 2024-2025.csv", result.Filename)
	assert.Contains(t, string(result.Body), "then@titans.club")
}

func TestExportArchivesListing(t *testing.T) {
	archives := newArchiveRepoStub()
	archives.snapshots["TITANS 2024-2025"] = models.WorkspaceSnapshot{
		TermID:  "TITANS 2024-2025",
		Members: []models.Member{{Email: "then@titans.club"}},
	}
	svc := NewExportService(newMemberRepoStub(), archives, nil, nil, nil)

	result, err := svc.Archives(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "archives.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF-"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(newMemberRepoStub(), newArchiveRepoStub(), nil, nil, nil)

	_, err := svc.Roster(context.Background(), nil, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
