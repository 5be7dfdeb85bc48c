package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
)

// storeStub is an in-memory documentStore with per-collection failure
// injection.
type storeStub struct {
	collections map[string]map[string]map[string]interface{}
	failList    map[string]error
	failWipe    map[string]error
	failSetMany map[string]error
	ops         []string
}

func newStoreStub() *storeStub {
	return &storeStub{
		collections: make(map[string]map[string]map[string]interface{}),
		failList:    make(map[string]error),
		failWipe:    make(map[string]error),
		failSetMany: make(map[string]error),
	}
}

func (s *storeStub) seed(collection, id string, record interface{}) {
	doc, err := repository.EncodeDoc(record)
	if err != nil {
		panic(err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]interface{})
	}
	s.collections[collection][id] = doc.Data
}

func (s *storeStub) count(collection string) int {
	return len(s.collections[collection])
}

func (s *storeStub) ListAll(ctx context.Context, collection string) ([]models.Document, error) {
	if err := s.failList[collection]; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, models.Document{ID: id, Data: s.collections[collection][id]})
	}
	return docs, nil
}

func (s *storeStub) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	data, ok := s.collections[collection][id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Document{ID: id, Data: data}, nil
}

func (s *storeStub) SetOne(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]interface{})
	}
	s.collections[collection][id] = data
	s.ops = append(s.ops, "set:"+collection+"/"+id)
	return nil
}

func (s *storeStub) DeleteOne(ctx context.Context, collection, id string) error {
	if _, ok := s.collections[collection][id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *storeStub) SetMany(ctx context.Context, collection string, docs []models.Document) error {
	if err := s.failSetMany[collection]; err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.SetOne(ctx, collection, doc.ID, doc.Data); err != nil {
			return err
		}
	}
	return nil
}

func (s *storeStub) DeleteMany(ctx context.Context, collection string, ids []string) error {
	for _, id := range ids {
		delete(s.collections[collection], id)
	}
	return nil
}

func (s *storeStub) DeleteAll(ctx context.Context, collection string) error {
	if err := s.failWipe[collection]; err != nil {
		return err
	}
	delete(s.collections, collection)
	s.ops = append(s.ops, "wipe:"+collection)
	return nil
}

// memberRepoStub is an in-memory roster keyed by email.
type memberRepoStub struct {
	members   map[string]models.Member
	wiped     bool
	listErr   error
	upsertErr error
}

func newMemberRepoStub(members ...models.Member) *memberRepoStub {
	stub := &memberRepoStub{members: make(map[string]models.Member)}
	for _, m := range members {
		stub.members[strings.ToLower(m.Email)] = m
	}
	return stub
}

func (r *memberRepoStub) List(ctx context.Context) ([]models.Member, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	result := make([]models.Member, 0, len(r.members))
	for _, m := range r.members {
		result = append(result, m)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].HierarchyLevel < result[j].HierarchyLevel
	})
	return result, nil
}

func (r *memberRepoStub) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	m, ok := r.members[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r *memberRepoStub) Upsert(ctx context.Context, m models.Member) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.members[strings.ToLower(m.Email)] = m
	return nil
}

func (r *memberRepoStub) UpsertMany(ctx context.Context, members []models.Member) error {
	for _, m := range members {
		if err := r.Upsert(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memberRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.members[strings.ToLower(id)]; !ok {
		return sql.ErrNoRows
	}
	delete(r.members, strings.ToLower(id))
	return nil
}

func (r *memberRepoStub) DeleteAll(ctx context.Context) error {
	r.members = make(map[string]models.Member)
	r.wiped = true
	return nil
}

// archiveRepoStub stores snapshots keyed by term, overwriting on collision.
type archiveRepoStub struct {
	snapshots map[string]models.WorkspaceSnapshot
	saveErr   error
	saves     int
}

func newArchiveRepoStub() *archiveRepoStub {
	return &archiveRepoStub{snapshots: make(map[string]models.WorkspaceSnapshot)}
}

func (r *archiveRepoStub) Save(ctx context.Context, snapshot models.WorkspaceSnapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.snapshots[snapshot.TermID] = snapshot
	r.saves++
	return nil
}

func (r *archiveRepoStub) Get(ctx context.Context, termID string) (*models.WorkspaceSnapshot, error) {
	snapshot, ok := r.snapshots[termID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &snapshot, nil
}

func (r *archiveRepoStub) List(ctx context.Context) ([]models.ArchiveSummary, error) {
	summaries := make([]models.ArchiveSummary, 0, len(r.snapshots))
	for _, snapshot := range r.snapshots {
		summaries = append(summaries, snapshot.Summary())
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TermID < summaries[j].TermID
	})
	return summaries, nil
}

// sessionRepoStub keeps bindings in a map.
type sessionRepoStub struct {
	bindings map[string]models.WorkspaceSnapshot
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{bindings: make(map[string]models.WorkspaceSnapshot)}
}

func (r *sessionRepoStub) GetBinding(ctx context.Context, sessionID string) (*models.WorkspaceSnapshot, error) {
	snapshot, ok := r.bindings[sessionID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *sessionRepoStub) SetBinding(ctx context.Context, sessionID string, snapshot models.WorkspaceSnapshot) error {
	r.bindings[sessionID] = snapshot
	return nil
}

func (r *sessionRepoStub) ClearBinding(ctx context.Context, sessionID string) error {
	delete(r.bindings, sessionID)
	return nil
}

func (r *sessionRepoStub) ClearBindingsForTerm(ctx context.Context, termID string) error {
	for sessionID, snapshot := range r.bindings {
		if snapshot.TermID == termID {
			delete(r.bindings, sessionID)
		}
	}
	return nil
}

// auditStub records audit calls.
type auditStub struct {
	entries []string
}

func (a *auditStub) Record(ctx context.Context, userName, role, action, details string) error {
	a.entries = append(a.entries, action+": "+details)
	return nil
}

// provisionerStub records credential creation and can reject.
type provisionerStub struct {
	created []string
	err     error
}

func (p *provisionerStub) CreateCredential(ctx context.Context, email, password string) error {
	if p.err != nil {
		return p.err
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}
	p.created = append(p.created, email)
	return nil
}
