package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
)

func seedQueries(store *storeStub) {
	store.seed(models.CollectionQueries, "q1", models.Query{
		ID: "q1", SenderName: "Mina", SenderEmail: "mina@titans.club",
		Subject: "Budget", Message: "When is it due?", Status: models.QueryStatusOpen,
	})
	store.seed(models.CollectionQueries, "q2", models.Query{
		ID: "q2", SenderName: "Ollie", SenderEmail: "ollie@titans.club",
		Subject: "Jersey", Message: "Sizes?", Status: models.QueryStatusOpen,
	})
}

func TestQueryListAdminSeesEverything(t *testing.T) {
	store := newStoreStub()
	seedQueries(store)
	svc := NewQueryService(store, &auditStub{}, nil)

	queries, err := svc.List(context.Background(), nil, models.JWTClaims{
		Email: "pres@titans.club", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Len(t, queries, 2)
}

func TestQueryListMemberSeesOnlyOwn(t *testing.T) {
	store := newStoreStub()
	seedQueries(store)
	svc := NewQueryService(store, &auditStub{}, nil)

	queries, err := svc.List(context.Background(), nil, models.JWTClaims{
		Email: "Mina@Titans.Club", Role: models.RoleMember,
	})
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "q1", queries[0].ID)
}

func TestQueryVisibilityRuleHoldsInArchiveView(t *testing.T) {
	doc1, _ := repository.EncodeDoc(models.Query{
		ID: "aq1", SenderEmail: "mina@titans.club", Subject: "Old ask", Message: "m",
	})
	doc2, _ := repository.EncodeDoc(models.Query{
		ID: "aq2", SenderEmail: "ollie@titans.club", Subject: "Other ask", Message: "m",
	})
	binding := &models.WorkspaceSnapshot{
		TermID: "TITANS 2024-2025",
		Collections: map[string][]models.Document{
			models.CollectionQueries: {doc1, doc2},
		},
	}
	svc := NewQueryService(newStoreStub(), &auditStub{}, nil)

	// Same sender-only rule applies when reading the archive.
	queries, err := svc.List(context.Background(), binding, models.JWTClaims{
		Email: "mina@titans.club", Role: models.RoleMember,
	})
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "aq1", queries[0].ID)

	queries, err = svc.List(context.Background(), binding, models.JWTClaims{
		Email: "pres@titans.club", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Len(t, queries, 2)
}

func TestQueryAnswerResolves(t *testing.T) {
	store := newStoreStub()
	seedQueries(store)
	svc := NewQueryService(store, &auditStub{}, nil)

	answered, err := svc.Answer(context.Background(), models.JWTClaims{
		Name: "Pres", Role: models.RoleAdmin,
	}, "q1", "Friday.")
	require.NoError(t, err)
	assert.Equal(t, models.QueryStatusResolved, answered.Status)
	assert.Equal(t, "Pres", answered.AnsweredBy)
	assert.Equal(t, "Friday.", answered.Answer)

	doc, err := store.Get(context.Background(), models.CollectionQueries, "q1")
	require.NoError(t, err)
	assert.Equal(t, string(models.QueryStatusResolved), doc.Data["status"])
}

func TestQuerySubmitStampsSender(t *testing.T) {
	store := newStoreStub()
	svc := NewQueryService(store, &auditStub{}, nil)

	query, err := svc.Submit(context.Background(), models.JWTClaims{
		Name: "Mina", Email: "MINA@titans.club", Role: models.RoleMember,
	}, "Budget", "When is it due?")
	require.NoError(t, err)
	assert.Equal(t, "mina@titans.club", query.SenderEmail)
	assert.Equal(t, models.QueryStatusOpen, query.Status)
	assert.NotEmpty(t, query.ID)
	assert.Equal(t, 1, store.count(models.CollectionQueries))
}
