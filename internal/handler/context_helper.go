package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/middleware"
	"github.com/titans-club/portal-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func bindingFromContext(c *gin.Context) *models.WorkspaceSnapshot {
	return middleware.BindingFromContext(c)
}
