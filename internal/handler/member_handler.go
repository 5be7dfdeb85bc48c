package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// MemberHandler exposes roster endpoints, including the draft editor.
type MemberHandler struct {
	service *service.MemberService
	exports *service.ExportService
}

// NewMemberHandler constructs a member handler.
func NewMemberHandler(svc *service.MemberService, exports *service.ExportService) *MemberHandler {
	return &MemberHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List the roster of the viewed term
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context(), bindingFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members)
}

// Get godoc
// @Summary Get one member
// @Tags Members
// @Produce json
// @Param email path string true "Member email"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{email} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), bindingFromContext(c), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member)
}

// Create godoc
// @Summary Add a roster member
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body models.Member true "Member payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	var m models.Member
	if err := c.ShouldBindJSON(&m); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid member payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), m)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update a roster member
// @Tags Members
// @Accept json
// @Produce json
// @Param email path string true "Member email"
// @Param payload body models.Member true "Member payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{email} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	var m models.Member
	if err := c.ShouldBindJSON(&m); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid member payload"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), c.Param("email"), m)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Delete godoc
// @Summary Remove a roster member
// @Tags Members
// @Param email path string true "Member email"
// @Success 204
// @Security BearerAuth
// @Router /members/{email} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BeginDraft godoc
// @Summary Open a staged roster editing session
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/draft [post]
func (h *MemberHandler) BeginDraft(c *gin.Context) {
	draft, err := h.service.BeginDraft(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// Draft godoc
// @Summary Read the staged roster
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/draft [get]
func (h *MemberHandler) Draft(c *gin.Context) {
	draft, err := h.service.DraftMembers()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// StageUpsert godoc
// @Summary Stage one member add or edit
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body models.Member true "Member payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/draft/members [put]
func (h *MemberHandler) StageUpsert(c *gin.Context) {
	var m models.Member
	if err := c.ShouldBindJSON(&m); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid member payload"))
		return
	}
	draft, err := h.service.StageUpsert(m)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// StageDelete godoc
// @Summary Stage one member removal
// @Tags Members
// @Produce json
// @Param email path string true "Member email"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/draft/members/{email} [delete]
func (h *MemberHandler) StageDelete(c *gin.Context) {
	draft, err := h.service.StageDelete(c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// Undo godoc
// @Summary Undo the latest staged edit
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/draft/undo [post]
func (h *MemberHandler) Undo(c *gin.Context) {
	draft, err := h.service.Undo()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// Redo godoc
// @Summary Redo the latest undone edit
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/draft/redo [post]
func (h *MemberHandler) Redo(c *gin.Context) {
	draft, err := h.service.Redo()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft)
}

// CommitDraft godoc
// @Summary Commit the staged roster to the store
// @Tags Members
// @Success 204
// @Security BearerAuth
// @Router /members/draft/commit [post]
func (h *MemberHandler) CommitDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.CommitDraft(c.Request.Context(), *claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DiscardDraft godoc
// @Summary Abandon the staged roster session
// @Tags Members
// @Success 204
// @Security BearerAuth
// @Router /members/draft [delete]
func (h *MemberHandler) DiscardDraft(c *gin.Context) {
	h.service.DiscardDraft()
	response.NoContent(c)
}

// Export godoc
// @Summary Download the roster of the viewed term
// @Tags Members
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /members/export [get]
func (h *MemberHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Roster(c.Request.Context(), bindingFromContext(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
