package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// RolloverHandler exposes the term rollover state machine.
type RolloverHandler struct {
	service *service.RolloverService
	metrics *service.MetricsService
}

// NewRolloverHandler constructs a rollover handler.
func NewRolloverHandler(svc *service.RolloverService, metrics *service.MetricsService) *RolloverHandler {
	return &RolloverHandler{service: svc, metrics: metrics}
}

// Begin godoc
// @Summary Open the rollover confirmation step
// @Tags Rollover
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rollover/begin [post]
func (h *RolloverHandler) Begin(c *gin.Context) {
	if err := h.service.Begin(); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status())
}

// Confirm godoc
// @Summary Acknowledge the destructive-consequences warning
// @Tags Rollover
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rollover/confirm [post]
func (h *RolloverHandler) Confirm(c *gin.Context) {
	if err := h.service.Confirm(); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status())
}

// Cancel godoc
// @Summary Abandon the rollover before execution
// @Tags Rollover
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rollover/cancel [post]
func (h *RolloverHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status())
}

// Submit godoc
// @Summary Submit incoming admin credentials and execute the rollover
// @Tags Rollover
// @Accept json
// @Produce json
// @Param payload body models.AdminCredentials true "Incoming admin"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /rollover/submit [post]
func (h *RolloverHandler) Submit(c *gin.Context) {
	var creds models.AdminCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid credentials payload"))
		return
	}
	if err := h.service.Submit(c.Request.Context(), creds); err != nil {
		h.metrics.RecordRollover("rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordRollover("accepted")
	response.Accepted(c, h.service.Status())
}

// Status godoc
// @Summary Poll the rollover workflow
// @Tags Rollover
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rollover/status [get]
func (h *RolloverHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status())
}
