package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/service"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
	"github.com/titans-club/portal-api/pkg/response"
)

// SessionHeader carries the caller's session identity for archive view
// binding lookups.
const SessionHeader = "X-Session-ID"

// ContextBindingKey is the gin context key storing the archive view
// binding, when one exists.
const ContextBindingKey = "archiveViewBinding"

// ViewModeHeader reports which term the response was served from.
const ViewModeHeader = "X-View-Mode"

// ArchiveView routes each request to live or archived data. A session
// bound to a snapshot reads from it, and every mutating verb is rejected:
// archives are immutable and the only ways out are exiting the view or a
// permanent restore.
func ArchiveView(restoreService *service.RestoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			c.Header(ViewModeHeader, "live")
			c.Next()
			return
		}

		binding, err := restoreService.Binding(c.Request.Context(), sessionID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if binding == nil {
			c.Header(ViewModeHeader, "live")
			c.Next()
			return
		}

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.Error(c, appErrors.Clone(appErrors.ErrArchiveReadOnly,
				"exit the archive view of "+binding.TermID+" before editing"))
			c.Abort()
			return
		}

		c.Header(ViewModeHeader, binding.TermID)
		c.Set(ContextBindingKey, binding)
		c.Next()
	}
}

// BindingFromContext returns the snapshot the request is viewing, or nil in
// live mode.
func BindingFromContext(c *gin.Context) *models.WorkspaceSnapshot {
	value, exists := c.Get(ContextBindingKey)
	if !exists {
		return nil
	}
	binding, ok := value.(*models.WorkspaceSnapshot)
	if !ok {
		return nil
	}
	return binding
}
