package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/handlers"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

func newTestRouter(jwt *middleware.JWTAuth) http.Handler {
	return New(Deps{
		JWT:         jwt,
		AuthLimiter: middleware.NewRateLimiter(10, time.Minute),
		Logger:      zap.NewNop(),
		FrontendURL: "http://localhost:5173",
		Auth:        handlers.NewAuthHandler(nil),
		Training:    handlers.NewTrainingHandler(nil, nil),
		Content:     handlers.NewContentHandler(nil),
		Visibility:  handlers.NewVisibilityHandler(nil),
		Imports:     handlers.NewImportHandler(nil, nil, nil, "", nil),
		Stats:       handlers.NewStatsHandler(nil),
		WebSocket:   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) },
	})
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(middleware.NewJWTAuth("secret"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	jwt := middleware.NewJWTAuth("secret")
	h := newTestRouter(jwt)

	for _, path := range []string{"/api/v1/training", "/api/v1/themes", "/api/v1/stats", "/api/v1/auth/me"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	token, err := jwt.GenerateAccessToken(uuid.New(), "user@example.com", models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/users/"+uuid.NewString()+"/role", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_WebSocketIsPublic(t *testing.T) {
	h := newTestRouter(middleware.NewJWTAuth("secret"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(middleware.NewJWTAuth("secret"))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/training/setup", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
