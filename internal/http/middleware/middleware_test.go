package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/ctxutil"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
	"github.com/yungbote/funny-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	userID uint
	err    error
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if s.err != nil {
		return ctx, s.err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID}), nil
}

func (stubAuth) Me(context.Context) (*domain.User, error) { return nil, nil }
func (stubAuth) GetAccessTTL() time.Duration               { return time.Hour }

func authRouter(auth services.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), auth).RequireAuth())
	r.GET("/auth/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": rd.UserID, "token": rd.TokenString})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cases := []struct {
		name   string
		auth   stubAuth
		header string
		query  string
		status int
	}{
		{"missing", stubAuth{userID: 1}, "", "", http.StatusUnauthorized},
		{"bearer", stubAuth{userID: 1}, "Bearer abc", "", http.StatusOK},
		{"query", stubAuth{userID: 1}, "", "?token=abc", http.StatusOK},
		{"rejected", stubAuth{err: services.UnauthorizedError("auth.token", "token expired")}, "Bearer abc", "", http.StatusUnauthorized},
		{"storage", stubAuth{err: services.OperationalError("auth.token", "database error", nil)}, "Bearer abc", "", http.StatusInternalServerError},
		{"no user", stubAuth{userID: 0}, "Bearer abc", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			authRouter(tc.auth).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"error":{`)
			}
		})
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/health", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, seen)
	assert.Equal(t, "req-123", seen.RequestID)
	assert.NotEmpty(t, seen.TraceID)
	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, seen.TraceID, rec.Header().Get(HeaderTraceID))
}

func TestAttachRequestContextRecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext(logger.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
