package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/mchernyshov/tradepost/internal/auth"
	"github.com/mchernyshov/tradepost/internal/database/testutil"
	"github.com/mchernyshov/tradepost/internal/realtime"
	"github.com/mchernyshov/tradepost/pkg/response"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	registry := realtime.NewRegistry()
	t.Cleanup(registry.Reset)

	router, err := NewRouter(db, jwtSvc, realtime.NewHub(registry))
	require.NoError(t, err)
	return router
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	// Health should be public
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Protected endpoints without auth should be 401
	for _, path := range []string{"/api/auth/me", "/api/products", "/api/articles", "/api/notifications"} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// Unknown routes fall through to the JSON 404 handler
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{
		"email":      "anna@example.com",
		"password":   "secret-password",
		"first_name": "Anna",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	data := payload.Data.(map[string]any)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// The issued token opens protected routes.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong password fails login.
	body, _ = json.Marshal(map[string]string{"email": "anna@example.com", "password": "wrong-password"})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	metricsReq, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	require.Equal(t, http.StatusOK, metricsRec.Code)

	body := metricsRec.Body.String()
	require.True(t, strings.Contains(body, `tradepost_api_latency_seconds_count{method="GET",path="/health",status="200"}`), body)
}
