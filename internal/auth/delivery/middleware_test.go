package delivery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "inboxpilot-backend/internal/auth/domain"
	"inboxpilot-backend/internal/auth/usecase"
	"inboxpilot-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, usecase.AuthUsecase) {
	gin.SetMode(gin.TestMode)
	uc := usecase.NewAuthUsecase(nil, &config.Config{JWTSecret: "test-secret"})

	whoami := func(c *gin.Context) {
		identity, ok := RequireIdentity(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, identity.UserID)
	}

	r := gin.New()
	r.GET("/whoami", AuthMiddleware(uc), whoami)
	r.GET("/callback", CallbackAuthMiddleware(uc), whoami)
	return r, uc
}

func TestAuthMiddleware(t *testing.T) {
	r, uc := newTestRouter(t)
	token, err := uc.IssueToken(authdomain.Identity{UserID: "user_42"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer", path: "/whoami", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "user_42"},
		{name: "session cookie ignored on api routes", path: "/whoami", cookie: token, wantStatus: http.StatusUnauthorized},
		{name: "missing", path: "/whoami", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/whoami", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "bad token", path: "/whoami", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "callback bearer", path: "/callback", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "user_42"},
		{name: "callback session cookie", path: "/callback", cookie: token, wantStatus: http.StatusOK, wantBody: "user_42"},
		{name: "callback bad cookie", path: "/callback", cookie: "nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestRequireIdentityWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := RequireIdentity(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
