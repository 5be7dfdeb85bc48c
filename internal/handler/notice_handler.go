package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// NoticeHandler exposes notice board endpoints.
type NoticeHandler struct {
	service *service.NoticeService
}

// NewNoticeHandler constructs a notice handler.
func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

type createNoticeRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// List godoc
// @Summary List notices of the viewed term
// @Tags Notices
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	notices, err := h.service.List(c.Request.Context(), bindingFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices)
}

// Create godoc
// @Summary Post a notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body createNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req createNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid notice payload"))
		return
	}
	notice, err := h.service.Create(c.Request.Context(), *claims, req.Text, req.Category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// Delete godoc
// @Summary Remove a notice
// @Tags Notices
// @Param id path string true "Notice id"
// @Success 204
// @Security BearerAuth
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
