package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/titans-club/portal-api/internal/models"
)

// AuditRepository appends and reads the activity_logs collection. Writes
// are best-effort at the call sites: every caller swallows failures after a
// warning, because losing an audit entry must never block a completed data
// operation.
type AuditRepository struct {
	store *DocumentStore
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(store *DocumentStore) *AuditRepository {
	return &AuditRepository{store: store}
}

// Record appends one audit trail entry.
func (r *AuditRepository) Record(ctx context.Context, userName, role, action, details string) error {
	entry := models.ActivityEntry{
		ID:        uuid.NewString(),
		UserName:  userName,
		Role:      role,
		Action:    action,
		Details:   details,
		Timestamp: models.NowWhen(),
	}
	doc, err := EncodeDoc(entry)
	if err != nil {
		return err
	}
	return r.store.SetOne(ctx, models.CollectionActivityLogs, doc.ID, doc.Data)
}

// ListRecent returns up to limit entries, most recent first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	docs, err := r.store.ListAll(ctx, models.CollectionActivityLogs)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ActivityEntry, 0, len(docs))
	for _, doc := range docs {
		var entry models.ActivityEntry
		if err := DecodeDoc(doc, &entry); err != nil {
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
