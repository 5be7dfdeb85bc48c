package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
)

// activityLister reads the audit trail.
type activityLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// ActivityService exposes the audit trail feed.
type ActivityService struct {
	entries activityLister
	logger  *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(entries activityLister, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{entries: entries, logger: logger}
}

// List returns the feed of the viewed term, most recent first. Archive
// views read the frozen trail from the snapshot.
func (s *ActivityService) List(ctx context.Context, binding *models.WorkspaceSnapshot, limit int) ([]models.ActivityEntry, error) {
	if binding == nil {
		return s.entries.ListRecent(ctx, limit)
	}

	docs := binding.CollectionDocs(models.CollectionActivityLogs)
	entries := make([]models.ActivityEntry, 0, len(docs))
	for _, doc := range docs {
		var entry models.ActivityEntry
		if err := repository.DecodeDoc(doc, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
