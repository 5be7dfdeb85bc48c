package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titans-club/portal-api/internal/models"
)

type auditSinkStub struct {
	entries []string
}

func (s *auditSinkStub) Record(ctx context.Context, userName, role, action, details string) error {
	s.entries = append(s.entries, userName+"|"+role+"|"+action+"|"+details)
	return nil
}

func newAuditRouter(sink *auditSinkStub, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{Name: "Asha", Role: models.RoleAdmin})
	})
	r.DELETE("/notices/:id", Audit(sink, "Notice Removed"), func(c *gin.Context) {
		c.Status(status)
	})
	return r
}

func TestAuditRecordsSuccessfulDeletes(t *testing.T) {
	sink := &auditSinkStub{}
	w := httptest.NewRecorder()
	newAuditRouter(sink, http.StatusNoContent).ServeHTTP(w,
		httptest.NewRequest(http.MethodDelete, "/notices/n1", nil))

	require.Len(t, sink.entries, 1)
	assert.Equal(t, "Asha|admin|Notice Removed|DELETE /notices/:id", sink.entries[0])
}

func TestAuditSkipsFailedRequests(t *testing.T) {
	sink := &auditSinkStub{}
	w := httptest.NewRecorder()
	newAuditRouter(sink, http.StatusConflict).ServeHTTP(w,
		httptest.NewRequest(http.MethodDelete, "/notices/n1", nil))

	assert.Empty(t, sink.entries)
}
