package repository

import (
	"context"
	"database/sql"
	"sort"

	"github.com/titans-club/portal-api/internal/models"
)

// MemberRepository provides typed access to the users collection.
type MemberRepository struct {
	store *DocumentStore
}

// NewMemberRepository constructs the repository.
func NewMemberRepository(store *DocumentStore) *MemberRepository {
	return &MemberRepository{store: store}
}

// List returns every roster member sorted by hierarchy level, highest
// authority first. Members without an explicit team get one derived from
// their position.
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	docs, err := r.store.ListAll(ctx, models.CollectionUsers)
	if err != nil {
		return nil, err
	}

	members := make([]models.Member, 0, len(docs))
	for _, doc := range docs {
		var m models.Member
		if err := DecodeDoc(doc, &m); err != nil {
			return nil, err
		}
		if m.Team == "" {
			m.Team = models.TeamForPosition(m.Position)
		}
		if m.HierarchyLevel == 0 {
			m.HierarchyLevel = 99
		}
		members = append(members, m)
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].HierarchyLevel < members[j].HierarchyLevel
	})
	return members, nil
}

// FindByEmail loads one member keyed by email.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	doc, err := r.store.Get(ctx, models.CollectionUsers, email)
	if err != nil {
		return nil, err
	}
	var m models.Member
	if err := DecodeDoc(*doc, &m); err != nil {
		return nil, err
	}
	if m.Team == "" {
		m.Team = models.TeamForPosition(m.Position)
	}
	return &m, nil
}

// Upsert writes one member document under the member's ID.
func (r *MemberRepository) Upsert(ctx context.Context, m models.Member) error {
	doc, err := EncodeDoc(m)
	if err != nil {
		return err
	}
	return r.store.SetOne(ctx, models.CollectionUsers, doc.ID, doc.Data)
}

// UpsertMany writes a batch of members in one transaction.
func (r *MemberRepository) UpsertMany(ctx context.Context, members []models.Member) error {
	docs := make([]models.Document, 0, len(members))
	for _, m := range members {
		doc, err := EncodeDoc(m)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return r.store.SetMany(ctx, models.CollectionUsers, docs)
}

// Delete removes one member document.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	err := r.store.DeleteOne(ctx, models.CollectionUsers, id)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	return err
}

// DeleteAll wipes the roster. Reserved for the rollover and restore
// engines; ordinary roster editing never calls it.
func (r *MemberRepository) DeleteAll(ctx context.Context) error {
	return r.store.DeleteAll(ctx, models.CollectionUsers)
}
