package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// TaskHandler exposes kanban board endpoints.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

type moveTaskRequest struct {
	Status models.TaskStatus `json:"status"`
}

type taskUpdateRequest struct {
	Text string `json:"text"`
}

// List godoc
// @Summary List board tasks of the viewed term
// @Tags Tasks
// @Produce json
// @Param eventId query string false "Filter by event"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.service.List(c.Request.Context(), bindingFromContext(c), c.Query("eventId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

// Create godoc
// @Summary Add a board task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body models.Task true "Task payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var t models.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid task payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), *claims, t)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// MoveStatus godoc
// @Summary Drag a task to another column
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task id"
// @Param payload body moveTaskRequest true "Target column"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/status [put]
func (h *TaskHandler) MoveStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req moveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	task, err := h.service.MoveStatus(c.Request.Context(), *claims, c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task)
}

// AppendUpdate godoc
// @Summary Append a progress note
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task id"
// @Param payload body taskUpdateRequest true "Progress note"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/updates [post]
func (h *TaskHandler) AppendUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid update payload"))
		return
	}
	task, err := h.service.AppendUpdate(c.Request.Context(), *claims, c.Param("id"), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task)
}

// Delete godoc
// @Summary Remove a task
// @Tags Tasks
// @Param id path string true "Task id"
// @Success 204
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
