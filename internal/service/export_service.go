package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/pkg/export"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// ExportFormat names a supported download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type tableRenderer interface {
	Render(t export.Table) ([]byte, error)
}

// ExportResult is one rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders roster and archive downloads. Files stream straight
// back to the caller; nothing is written to disk.
type ExportService struct {
	members  memberStore
	archives archiveStore
	csv      tableRenderer
	pdf      tableRenderer
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(members memberStore, archives archiveStore, csv, pdf tableRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVRenderer()
	}
	if pdf == nil {
		pdf = export.NewPDFRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{members: members, archives: archives, csv: csv, pdf: pdf, logger: logger}
}

// Roster renders the roster of the viewed term.
func (s *ExportService) Roster(ctx context.Context, binding *models.WorkspaceSnapshot, format ExportFormat) (*ExportResult, error) {
	var members []models.Member
	var err error
	name := "roster"
	if binding != nil {
		members = binding.Members
		name = "roster-" + binding.TermID
	} else if members, err = s.members.List(ctx); err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "Committee Roster",
		Columns: []string{"Name", "Email", "Position", "Team", "Role", "Hierarchy"},
		Rows:    make([][]string, 0, len(members)),
	}
	for _, m := range members {
		table.Rows = append(table.Rows, []string{
			m.Name, m.Email, m.Position, m.Team, string(m.Role), strconv.Itoa(m.HierarchyLevel),
		})
	}
	return s.render(table, name, format)
}

// Archives renders the archive picker listing.
func (s *ExportService) Archives(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	summaries, err := s.archives.List(ctx)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "Archived Terms",
		Columns: []string{"Term", "Archived At", "Members", "Notices", "Events", "Tasks"},
		Rows:    make([][]string, 0, len(summaries)),
	}
	for _, summary := range summaries {
		table.Rows = append(table.Rows, []string{
			summary.TermID,
			summary.ArchivedAt.Format(time.RFC3339),
			strconv.Itoa(summary.Members),
			strconv.Itoa(summary.Notices),
			strconv.Itoa(summary.Events),
			strconv.Itoa(summary.Tasks),
		})
	}
	return s.render(table, "archives", format)
}

func (s *ExportService) render(table export.Table, name string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportFormatCSV:
		body, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: fmt.Sprintf("%s.csv", name), ContentType: "text/csv", Body: body}, nil
	case ExportFormatPDF:
		body, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: fmt.Sprintf("%s.pdf", name), ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+string(format))
	}
}
