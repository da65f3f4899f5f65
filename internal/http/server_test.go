package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clientview/boardd/internal/board"
	"github.com/clientview/boardd/internal/cache"
	"github.com/clientview/boardd/internal/service"
	"github.com/clientview/boardd/internal/tracker"
)

type staticFetcher struct {
	issues []tracker.Issue
	states []tracker.WorkflowState
}

func (f *staticFetcher) Issues(ctx context.Context, teamID string) ([]tracker.Issue, error) {
	return f.issues, nil
}

func (f *staticFetcher) WorkflowStates(ctx context.Context, teamID string) ([]tracker.WorkflowState, error) {
	return f.states, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	fetcher := &staticFetcher{
		issues: []tracker.Issue{
			{ID: "1", Identifier: "ENG-1", State: tracker.WorkflowState{ID: "s1", Name: "Client Review", Type: tracker.StateTypeCompleted}, SubIssueCount: 3},
		},
		states: []tracker.WorkflowState{
			{ID: "s1", Name: "Client Review", Type: tracker.StateTypeCompleted},
		},
	}

	store := cache.NewStore(cache.Options{})
	t.Cleanup(func() { store.Close() })
	orch := cache.NewOrchestrator(store, cache.DefaultTTLClasses(), nil, nil)
	boards := service.NewBoardService(fetcher, orch, board.NewAssembler(nil), nil)

	server, err := NewServer(boards, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	return server
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, zaptest.NewLogger(t), nil)
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleBoard(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams/ENG/board", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view board.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.IssuesByColumn[board.ColumnPendingReview], 1)
	assert.Equal(t, board.Counters{Parents: 1, SubIssues: 3, Total: 4}, view.CountersByColumn[board.ColumnPendingReview])
}

func TestHandleCacheStats(t *testing.T) {
	server := newTestServer(t)

	// Populate the cache through a board request first.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/teams/ENG/board", nil)
	server.echo.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Entries)
}

func TestHandleInvalidate(t *testing.T) {
	server := newTestServer(t)

	body := `{"event":"issue-state-changed","team":"ENG"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invalidate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"event":"issue-state-changed"}`, rec.Body.String())
}

func TestHandleInvalidate_UnknownEvent(t *testing.T) {
	server := newTestServer(t)

	body := `{"event":"made-up"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invalidate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleInvalidate_MissingEvent(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invalidate", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
