package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/requestlog/application"
	"github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	requestDB "github.com/glitchjsy/opendata-api/internal/requestlog/infra/outbound/db"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/tests/mocks"
)

type recordingTracker struct {
	mu       sync.Mutex
	requests []domain.Request
}

func (r *recordingTracker) Track(req domain.Request) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return true
}

func TestTrackRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracker := &recordingTracker{}
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Set(APITokenContextKey, "tok-9")
		}
	})
	r.Use(TrackRequests(tracker, func() time.Time { return at }))
	r.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/v1/ping?x=1", nil)
	req.Header.Set("User-Agent", "tests/1.0")
	req.Header.Set("Authorization", "Bearer abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, tracker.requests, 1)
	got := tracker.requests[0]
	assert.Equal(t, "GET", got.Method)
	assert.Equal(t, "/v1/ping", got.Path)
	assert.Equal(t, http.StatusTeapot, got.StatusCode)
	assert.Equal(t, "tests/1.0", got.UserAgent)
	assert.Equal(t, at, got.CreatedAt)
	require.NotNil(t, got.APITokenID)
	assert.Equal(t, "tok-9", *got.APITokenID)
}

func TestRequireUserAgent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireUserAgent())
	r.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Del("User-Agent")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("User-Agent", "ok")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func newAdminRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db := mocks.NewSQLite(t)
	require.NoError(t, requestDB.InitSQLite(context.Background(), db))
	exec := sqlstore.NewExecutor(db, sqlstore.SQLite, time.Second, zap.NewNop())
	repo := requestDB.NewRequestRepoSQL(exec, 3, zap.NewNop())

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	for _, p := range []string{"/v1/petitions", "/v1/petitions", "/v1/carparks/spaces"} {
		require.NoError(t, repo.Save(context.Background(),
			domain.NewRequest("GET", p, 200, "1.1.1.1", "ua", "", now.Add(-time.Hour))))
	}

	svc := application.NewRequestLogService(repo, repo, func() time.Time { return now }, zap.NewNop())
	r := gin.New()
	RegisterAdminStatsRoutes(r.Group("/admin"), NewAdminStatsHandler(svc, zap.NewNop()))
	return r
}

func TestAdminStats(t *testing.T) {
	r := newAdminRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, domain.StatTotals)
	assert.Contains(t, body, domain.StatDailyForMonth)
	assert.Contains(t, body, domain.StatTopEndpoints)
	totals := body[domain.StatTotals].(map[string]any)
	assert.Equal(t, float64(3), totals["total_all_time"])
}

func TestAdminTopEndpoints(t *testing.T) {
	r := newAdminRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats/top-endpoints?year=2024&month=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"results":[{"path":"/v1/petitions","total":2},{"path":"/v1/carparks/spaces","total":1}]}`,
		w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats/top-endpoints?year=2024&month=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats?month=13&year=2024", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
