package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/middleware"
	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// ArchiveHandler exposes the archive picker, view binding, and permanent
// restore endpoints.
type ArchiveHandler struct {
	service *service.RestoreService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewArchiveHandler constructs an archive handler.
func NewArchiveHandler(svc *service.RestoreService, exports *service.ExportService, metrics *service.MetricsService) *ArchiveHandler {
	return &ArchiveHandler{service: svc, exports: exports, metrics: metrics}
}

type bindViewRequest struct {
	TermID string `json:"termId"`
}

type permanentRestoreRequest struct {
	TermID string                  `json:"termId"`
	Admin  models.AdminCredentials `json:"admin"`
}

// List godoc
// @Summary List archived terms
// @Tags Archives
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	summaries, err := h.service.ListArchives(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries)
}

// Get godoc
// @Summary Fetch one archived term summary
// @Tags Archives
// @Produce json
// @Param termId path string true "Term id"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /archives/{termId} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	summary, err := h.service.GetArchive(c.Request.Context(), c.Param("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Export godoc
// @Summary Download the archive listing
// @Tags Archives
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /archives/export [get]
func (h *ArchiveHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Archives(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// BindView godoc
// @Summary Bind this session to an archived term
// @Tags Archives
// @Accept json
// @Produce json
// @Param payload body bindViewRequest true "Term to view"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /archives/view [post]
func (h *ArchiveHandler) BindView(c *gin.Context) {
	var req bindViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid view payload"))
		return
	}
	sessionID := c.GetHeader(middleware.SessionHeader)
	snapshot, err := h.service.BindTemporaryView(c.Request.Context(), sessionID, req.TermID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ArchiveViewBound(1)
	response.JSON(c, http.StatusOK, snapshot.Summary())
}

// ExitView godoc
// @Summary Return this session to the active term
// @Tags Archives
// @Success 204
// @Security BearerAuth
// @Router /archives/view [delete]
func (h *ArchiveHandler) ExitView(c *gin.Context) {
	sessionID := c.GetHeader(middleware.SessionHeader)
	if err := h.service.ClearView(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ArchiveViewBound(-1)
	response.NoContent(c)
}

// ViewStatus godoc
// @Summary Report which term this session is viewing
// @Tags Archives
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /archives/view [get]
func (h *ArchiveHandler) ViewStatus(c *gin.Context) {
	sessionID := c.GetHeader(middleware.SessionHeader)
	binding, err := h.service.Binding(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if binding == nil {
		response.JSON(c, http.StatusOK, gin.H{"mode": "live"})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"mode": "archive", "termId": binding.TermID})
}

// Restore godoc
// @Summary Permanently restore an archived term
// @Description Replays the snapshot over the live workspace. Destructive.
// @Tags Archives
// @Accept json
// @Produce json
// @Param payload body permanentRestoreRequest true "Restore payload"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /archives/restore [post]
func (h *ArchiveHandler) Restore(c *gin.Context) {
	var req permanentRestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid restore payload"))
		return
	}
	if err := h.service.SubmitPermanentRestore(c.Request.Context(), req.TermID, req.Admin); err != nil {
		h.metrics.RecordRestore("rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordRestore("accepted")
	response.Accepted(c, h.service.Status())
}

// RestoreStatus godoc
// @Summary Poll the permanent restore workflow
// @Tags Archives
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /archives/restore/status [get]
func (h *ArchiveHandler) RestoreStatus(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status())
}
