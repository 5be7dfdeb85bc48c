package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// NoticeService manages the official notice board.
type NoticeService struct {
	store  documentStore
	audit  auditRecorder
	logger *zap.Logger
}

// NewNoticeService constructs the service.
func NewNoticeService(store documentStore, audit auditRecorder, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{store: store, audit: audit, logger: logger}
}

// List returns the notices of the viewed term, most recent first. A session
// bound to an archive reads from the snapshot instead of the live board.
func (s *NoticeService) List(ctx context.Context, binding *models.WorkspaceSnapshot) ([]models.Notice, error) {
	var docs []models.Document
	var err error
	if binding != nil {
		docs = binding.CollectionDocs(models.CollectionNotices)
	} else {
		docs, err = s.store.ListAll(ctx, models.CollectionNotices)
		if err != nil {
			return nil, err
		}
	}

	notices := make([]models.Notice, 0, len(docs))
	for _, doc := range docs {
		var n models.Notice
		if err := repository.DecodeDoc(doc, &n); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	sort.SliceStable(notices, func(i, j int) bool {
		return notices[i].Timestamp.After(notices[j].Timestamp)
	})
	return notices, nil
}

// Create posts a new notice stamped with the author's identity.
func (s *NoticeService) Create(ctx context.Context, actor models.JWTClaims, text, category string) (*models.Notice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "notice text must not be empty")
	}
	if !validNoticeCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown notice category "+category)
	}

	notice := models.Notice{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  category,
		Author:    actor.Name,
		Role:      string(actor.Role),
		Timestamp: models.NowWhen(),
	}
	doc, err := repository.EncodeDoc(notice)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionNotices, doc.ID, doc.Data); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.Name, string(actor.Role), "Notice Posted", category); err != nil {
		s.logger.Warn("audit entry for notice not recorded", zap.Error(err))
	}
	return &notice, nil
}

// Delete removes one notice.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteOne(ctx, models.CollectionNotices, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "no notice "+id)
	}
	return err
}

func validNoticeCategory(category string) bool {
	for _, known := range models.NoticeCategories {
		if category == known {
			return true
		}
	}
	return false
}
