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
	"github.com/titans-club/portal-api/internal/service"
)

type bindingStub struct {
	bindings map[string]models.WorkspaceSnapshot
}

func (s *bindingStub) GetBinding(ctx context.Context, sessionID string) (*models.WorkspaceSnapshot, error) {
	snapshot, ok := s.bindings[sessionID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *bindingStub) SetBinding(ctx context.Context, sessionID string, snapshot models.WorkspaceSnapshot) error {
	s.bindings[sessionID] = snapshot
	return nil
}

func (s *bindingStub) ClearBinding(ctx context.Context, sessionID string) error {
	delete(s.bindings, sessionID)
	return nil
}

func (s *bindingStub) ClearBindingsForTerm(ctx context.Context, termID string) error {
	return nil
}

func newViewRouter(t *testing.T, sessions *bindingStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	restoreService := service.NewRestoreService(nil, sessions, nil, nil, nil, nil, nil)

	r := gin.New()
	r.Use(ArchiveView(restoreService))
	r.GET("/notices", func(c *gin.Context) {
		binding := BindingFromContext(c)
		if binding != nil {
			c.JSON(http.StatusOK, gin.H{"term": binding.TermID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"term": "live"})
	})
	r.POST("/notices", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestArchiveViewLiveWithoutSession(t *testing.T) {
	r := newViewRouter(t, &bindingStub{bindings: map[string]models.WorkspaceSnapshot{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notices", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "live", w.Header().Get(ViewModeHeader))
	assert.Contains(t, w.Body.String(), "live")
}

func TestArchiveViewBoundSessionReadsSnapshot(t *testing.T) {
	sessions := &bindingStub{bindings: map[string]models.WorkspaceSnapshot{
		"sess-1": {TermID: "TITANS 2024-2025"},
	}}
	r := newViewRouter(t, sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notices", nil)
	req.Header.Set(SessionHeader, "sess-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TITANS 2024-2025", w.Header().Get(ViewModeHeader))
	assert.Contains(t, w.Body.String(), "TITANS 2024-2025")
}

func TestArchiveViewBlocksMutations(t *testing.T) {
	sessions := &bindingStub{bindings: map[string]models.WorkspaceSnapshot{
		"sess-1": {TermID: "TITANS 2024-2025"},
	}}
	r := newViewRouter(t, sessions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notices", nil)
	req.Header.Set(SessionHeader, "sess-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ARCHIVE_READ_ONLY")
}

func TestArchiveViewUnboundSessionMutates(t *testing.T) {
	r := newViewRouter(t, &bindingStub{bindings: map[string]models.WorkspaceSnapshot{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notices", nil)
	req.Header.Set(SessionHeader, "sess-9")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
}
