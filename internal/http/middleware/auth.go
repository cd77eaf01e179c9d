package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/pkg/ctxutil"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
	"github.com/yungbote/funny-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			if services.IsKind(err, services.KindUnauthorized) {
				abort(c, http.StatusUnauthorized, "unauthorized", err)
				return
			}
			am.log.Error("token check failed", "error", err)
			abort(c, http.StatusInternalServerError, "internal_error", errors.New("could not verify token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == 0 {
			abort(c, http.StatusForbidden, "forbidden", errors.New("forbidden"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, code string, err error) {
	response.RespondError(c, status, code, err)
	c.Abort()
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
