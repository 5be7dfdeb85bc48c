package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

// TaskService manages the kanban board.
type TaskService struct {
	store  documentStore
	audit  auditRecorder
	logger *zap.Logger
}

// NewTaskService constructs the service.
func NewTaskService(store documentStore, audit auditRecorder, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{store: store, audit: audit, logger: logger}
}

// List returns the board of the viewed term, newest cards first. Passing an
// eventID narrows the board to one event.
func (s *TaskService) List(ctx context.Context, binding *models.WorkspaceSnapshot, eventID string) ([]models.Task, error) {
	var docs []models.Document
	var err error
	if binding != nil {
		docs = binding.CollectionDocs(models.CollectionTasks)
	} else {
		docs, err = s.store.ListAll(ctx, models.CollectionTasks)
		if err != nil {
			return nil, err
		}
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		var t models.Task
		if err := repository.DecodeDoc(doc, &t); err != nil {
			return nil, err
		}
		if eventID != "" && t.EventID != eventID {
			continue
		}
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Create adds a card to the board in the todo column.
func (s *TaskService) Create(ctx context.Context, actor models.JWTClaims, t models.Task) (*models.Task, error) {
	t.TaskName = strings.TrimSpace(t.TaskName)
	if t.TaskName == "" || t.AssignedTo == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task name and assignee are required")
	}

	t.ID = uuid.NewString()
	t.Status = models.TaskStatusTodo
	if t.Updates == nil {
		t.Updates = []models.TaskUpdate{}
	}
	t.CreatedAt = models.NowWhen()

	doc, err := repository.EncodeDoc(t)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionTasks, doc.ID, doc.Data); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.Name, string(actor.Role), "Task Assigned",
		t.TaskName+" to "+t.AssignedTo); err != nil {
		s.logger.Warn("audit entry for task not recorded", zap.Error(err))
	}
	return &t, nil
}

// MoveStatus drags a card to another column. Only leadership, the assignee,
// or a listed collaborator may move a card.
func (s *TaskService) MoveStatus(ctx context.Context, actor models.JWTClaims, id string, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown task status "+string(status))
	}
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMoveTask(actor, *task) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assignee, collaborators, or leadership may move this task")
	}
	task.Status = status

	doc, err := repository.EncodeDoc(*task)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionTasks, id, doc.Data); err != nil {
		return nil, err
	}
	return task, nil
}

// AppendUpdate adds a progress note to a card.
func (s *TaskService) AppendUpdate(ctx context.Context, actor models.JWTClaims, id, text string) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "update text must not be empty")
	}
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMoveTask(actor, *task) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assignee, collaborators, or leadership may update this task")
	}
	task.Updates = append(task.Updates, models.TaskUpdate{
		Text:    text,
		AddedBy: actor.Name,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})

	doc, err := repository.EncodeDoc(*task)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOne(ctx, models.CollectionTasks, id, doc.Data); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes one card.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteOne(ctx, models.CollectionTasks, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "no task "+id)
	}
	return err
}

func canMoveTask(actor models.JWTClaims, t models.Task) bool {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleExecutive {
		return true
	}
	if strings.EqualFold(actor.Name, t.AssignedTo) {
		return true
	}
	for _, name := range strings.Split(t.TeamUpWith, ",") {
		if name = strings.TrimSpace(name); name != "" && strings.EqualFold(actor.Name, name) {
			return true
		}
	}
	return false
}

func (s *TaskService) get(ctx context.Context, id string) (*models.Task, error) {
	doc, err := s.store.Get(ctx, models.CollectionTasks, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no task "+id)
		}
		return nil, err
	}
	var t models.Task
	if err := repository.DecodeDoc(*doc, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
