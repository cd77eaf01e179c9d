package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/pkg/ctxutil"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

// AttachRequestContext gives each request its own sentry hub, tagged with the
// request id, and turns panics into a 500 envelope that is reported to sentry.
func AttachRequestContext(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			hub.Scope().SetTag("request_id", td.RequestID)
		}
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				hub.RecoverWithContext(c.Request.Context(), rec)
				log.Error("panic recovered", "path", c.Request.URL.Path, "error", err)
				response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}
