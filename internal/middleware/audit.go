package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/models"
)

// auditSink appends activity trail entries.
type auditSink interface {
	Record(ctx context.Context, userName, role, action, details string) error
}

// Audit records an activity trail entry after a successful request. The
// write is best-effort; a failed audit entry never fails the request.
func Audit(sink auditSink, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		userName := "anonymous"
		role := ""
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			userName = user.Name
			role = string(user.Role)
		}

		_ = sink.Record(c.Request.Context(), userName, role, action,
			c.Request.Method+" "+c.FullPath())
	}
}
