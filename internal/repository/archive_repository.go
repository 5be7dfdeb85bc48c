package repository

import (
	"context"
	"sort"

	"github.com/titans-club/portal-api/internal/models"
)

// ArchiveRepository persists workspace snapshots keyed by term identifier.
// Saving under an existing termId overwrites the previous snapshot; archive
// ids carry no version suffix, so two rollovers in one computed period are
// last-write-wins.
type ArchiveRepository struct {
	store *DocumentStore
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(store *DocumentStore) *ArchiveRepository {
	return &ArchiveRepository{store: store}
}

// Save writes a snapshot under its termId.
func (r *ArchiveRepository) Save(ctx context.Context, snapshot models.WorkspaceSnapshot) error {
	doc, err := EncodeDoc(struct {
		ID string `json:"id"`
		models.WorkspaceSnapshot
	}{ID: snapshot.TermID, WorkspaceSnapshot: snapshot})
	if err != nil {
		return err
	}
	return r.store.SetOne(ctx, models.CollectionArchives, snapshot.TermID, doc.Data)
}

// Get loads a snapshot by termId.
func (r *ArchiveRepository) Get(ctx context.Context, termID string) (*models.WorkspaceSnapshot, error) {
	doc, err := r.store.Get(ctx, models.CollectionArchives, termID)
	if err != nil {
		return nil, err
	}
	var snapshot models.WorkspaceSnapshot
	if err := DecodeDoc(*doc, &snapshot); err != nil {
		return nil, err
	}
	snapshot.TermID = termID
	return &snapshot, nil
}

// List returns picker summaries for every archived term, most recent first.
func (r *ArchiveRepository) List(ctx context.Context) ([]models.ArchiveSummary, error) {
	docs, err := r.store.ListAll(ctx, models.CollectionArchives)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ArchiveSummary, 0, len(docs))
	for _, doc := range docs {
		var snapshot models.WorkspaceSnapshot
		if err := DecodeDoc(doc, &snapshot); err != nil {
			return nil, err
		}
		snapshot.TermID = doc.ID
		summaries = append(summaries, snapshot.Summary())
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ArchivedAt.After(summaries[j].ArchivedAt)
	})
	return summaries, nil
}
