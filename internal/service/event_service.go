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

// EventService manages the club calendar.
type EventService struct {
	store  documentStore
	audit  auditRecorder
	logger *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(store documentStore, audit auditRecorder, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{store: store, audit: audit, logger: logger}
}

// List returns the calendar of the viewed term sorted by event date.
func (s *EventService) List(ctx context.Context, binding *models.WorkspaceSnapshot) ([]models.Event, error) {
	var docs []models.Document
	var err error
	if binding != nil {
		docs = binding.CollectionDocs(models.CollectionEvents)
	} else {
		docs, err = s.store.ListAll(ctx, models.CollectionEvents)
		if err != nil {
			return nil, err
		}
	}

	events := make([]models.Event, 0, len(docs))
	for _, doc := range docs {
		var e models.Event
		if err := repository.DecodeDoc(doc, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events, nil
}

// Get loads one event from the viewed term.
func (s *EventService) Get(ctx context.Context, binding *models.WorkspaceSnapshot, id string) (*models.Event, error) {
	if binding != nil {
		for _, doc := range binding.CollectionDocs(models.CollectionEvents) {
			if doc.ID == id {
				var e models.Event
				if err := repository.DecodeDoc(doc, &e); err != nil {
					return nil, err
				}
				return &e, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no archived event "+id)
	}

	doc, err := s.store.Get(ctx, models.CollectionEvents, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no event "+id)
		}
		return nil, err
	}
	var e models.Event
	if err := repository.DecodeDoc(*doc, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create schedules a new event. The display colour is pinned at creation so
// archived calendars render unchanged even if the palette evolves.
func (s *EventService) Create(ctx context.Context, actor models.JWTClaims, e models.Event) (*models.Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" || e.Date == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event title and date are required")
	}
	if e.Category == "" {
		e.Category = "None"
	}
	color, ok := models.EventCategoryColors[e.Category]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event category "+e.Category)
	}

	e.ID = uuid.NewString()
	e.Color = color
	e.CreatedAt = models.NowWhen()

	doc, err := repository.EncodeDoc(e)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionEvents, doc.ID, doc.Data); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.Name, string(actor.Role), "Event Scheduled", e.Title); err != nil {
		s.logger.Warn("audit entry for event not recorded", zap.Error(err))
	}
	return &e, nil
}

// Update rewrites one event in place, re-deriving the colour when the
// category changed.
func (s *EventService) Update(ctx context.Context, id string, e models.Event) (*models.Event, error) {
	existing, err := s.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if e.Category == "" {
		e.Category = existing.Category
	}
	color, ok := models.EventCategoryColors[e.Category]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event category "+e.Category)
	}

	e.ID = id
	e.Color = color
	e.CreatedAt = existing.CreatedAt

	doc, err := repository.EncodeDoc(e)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionEvents, id, doc.Data); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes one event. Tasks bound to it stay on the board with a
// dangling eventId, mirroring how the workspace has always behaved.
func (s *EventService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteOne(ctx, models.CollectionEvents, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "no event "+id)
	}
	return err
}
