package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titans-club/portal-api/internal/models"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

func TestEventCreatePinsCategoryColor(t *testing.T) {
	store := newStoreStub()
	svc := NewEventService(store, &auditStub{}, nil)

	event, err := svc.Create(context.Background(), models.JWTClaims{Name: "Pres"}, models.Event{
		Title: "Hack Night", Date: "2026-10-05", Category: "Technical",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventCategoryColors["Technical"], event.Color)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestEventCreateDefaultsCategory(t *testing.T) {
	svc := NewEventService(newStoreStub(), &auditStub{}, nil)

	event, err := svc.Create(context.Background(), models.JWTClaims{Name: "Pres"}, models.Event{
		Title: "Picnic", Date: "2026-10-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "None", event.Category)
	assert.Equal(t, models.EventCategoryColors["None"], event.Color)
}

func TestEventCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewEventService(newStoreStub(), &auditStub{}, nil)

	_, err := svc.Create(context.Background(), models.JWTClaims{Name: "Pres"}, models.Event{
		Title: "Mystery", Date: "2026-10-12", Category: "Chess Club",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestEventUpdateRederivesColorAndKeepsCreatedAt(t *testing.T) {
	store := newStoreStub()
	svc := NewEventService(store, &auditStub{}, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.JWTClaims{Name: "Pres"}, models.Event{
		Title: "Hack Night", Date: "2026-10-05", Category: "Technical",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, models.Event{
		Title: "Hack Night", Date: "2026-10-06", Category: "Cultural",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventCategoryColors["Cultural"], updated.Color)
	assert.Equal(t, created.CreatedAt.Time().Unix(), updated.CreatedAt.Time().Unix())
}
