package service

import (
	"context"
	"time"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// documentStore is the slice of the snapshot store the services depend on.
type documentStore interface {
	ListAll(ctx context.Context, collection string) ([]models.Document, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	SetOne(ctx context.Context, collection, id string, data map[string]interface{}) error
	DeleteOne(ctx context.Context, collection, id string) error
	SetMany(ctx context.Context, collection string, docs []models.Document) error
	DeleteMany(ctx context.Context, collection string, ids []string) error
	DeleteAll(ctx context.Context, collection string) error
}

// ArchiveCodec converts the live workspace into a snapshot and back. It has
// no side effects of its own beyond reading through the store.
type ArchiveCodec struct {
	store documentStore
}

// NewArchiveCodec constructs the codec.
func NewArchiveCodec(store documentStore) *ArchiveCodec {
	return &ArchiveCodec{store: store}
}

// BuildSnapshot freezes the given roster together with the full contents of
// every auxiliary collection. Archives are workspace-sized, so collections
// are read whole with no pagination. Any failed read aborts the build; a
// partial snapshot must never be persisted.
func (c *ArchiveCodec) BuildSnapshot(ctx context.Context, termID string, members []models.Member) (models.WorkspaceSnapshot, error) {
	snapshot := models.WorkspaceSnapshot{
		TermID:      termID,
		ArchivedAt:  time.Now().UTC(),
		Members:     members,
		Collections: make(map[string][]models.Document, len(models.AuxiliaryCollections)),
	}

	for _, collection := range models.AuxiliaryCollections {
		docs, err := c.store.ListAll(ctx, collection)
		if err != nil {
			return models.WorkspaceSnapshot{}, appErrors.Wrap(err,
				appErrors.ErrSnapshotBuild.Code, appErrors.ErrSnapshotBuild.Status,
				"failed to read "+collection+" for snapshot")
		}
		snapshot.Collections[collection] = docs
	}

	return snapshot, nil
}

// UnpackSnapshot splits a snapshot back into per-collection document lists
// keyed for writing. Pure: a snapshot missing an expected collection yields
// an empty list for it, never an error.
func UnpackSnapshot(snapshot models.WorkspaceSnapshot) map[string][]models.Document {
	unpacked := make(map[string][]models.Document, len(models.AuxiliaryCollections))
	for _, collection := range models.AuxiliaryCollections {
		docs := snapshot.CollectionDocs(collection)
		if docs == nil {
			docs = []models.Document{}
		}
		unpacked[collection] = docs
	}
	return unpacked
}
