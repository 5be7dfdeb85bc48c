package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// QueryHandler exposes the leadership inbox endpoints.
type QueryHandler struct {
	service *service.QueryService
}

// NewQueryHandler constructs a query handler.
func NewQueryHandler(svc *service.QueryService) *QueryHandler {
	return &QueryHandler{service: svc}
}

type submitQueryRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type answerQueryRequest struct {
	Answer string `json:"answer"`
}

// List godoc
// @Summary List inbox queries of the viewed term
// @Description Admins see every query; other members only their own.
// @Tags Queries
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /queries [get]
func (h *QueryHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queries, err := h.service.List(c.Request.Context(), bindingFromContext(c), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// Submit godoc
// @Summary File a query
// @Tags Queries
// @Accept json
// @Produce json
// @Param payload body submitQueryRequest true "Query payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /queries [post]
func (h *QueryHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req submitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query payload"))
		return
	}
	query, err := h.service.Submit(c.Request.Context(), *claims, req.Subject, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, query)
}

// Answer godoc
// @Summary Resolve a query
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path string true "Query id"
// @Param payload body answerQueryRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /queries/{id}/answer [put]
func (h *QueryHandler) Answer(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req answerQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid answer payload"))
		return
	}
	query, err := h.service.Answer(c.Request.Context(), *claims, c.Param("id"), req.Answer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, query)
}

// Delete godoc
// @Summary Remove a query
// @Tags Queries
// @Param id path string true "Query id"
// @Success 204
// @Security BearerAuth
// @Router /queries/{id} [delete]
func (h *QueryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
