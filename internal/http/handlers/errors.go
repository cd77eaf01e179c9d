package handlers

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/platform/apierr"
	"github.com/yungbote/funny-backend/internal/platform/openai"
	"github.com/yungbote/funny-backend/internal/services"
)

var errInternal = errors.New("internal server error")

// toAPIError maps a service error onto its transport status and code.
func toAPIError(err error) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	switch services.KindOf(err) {
	case services.KindValidation:
		return apierr.New(http.StatusBadRequest, "validation_error", err)
	case services.KindNotFound:
		return apierr.New(http.StatusNotFound, "not_found", err)
	case services.KindUnauthorized:
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case services.KindIntegrity:
		return apierr.New(http.StatusInternalServerError, "integrity_error", err)
	}
	if errors.Is(err, openai.ErrMissingAPIKey) {
		return apierr.New(http.StatusServiceUnavailable, "ai_not_configured", err)
	}
	return apierr.New(http.StatusInternalServerError, "operational_error", err)
}

// respondServiceError writes the error envelope. Operational failures are
// reported to sentry and answered without internal detail.
func respondServiceError(c *gin.Context, err error) {
	ae := toAPIError(err)
	if ae.Server() {
		_ = c.Error(err)
		if hub := sentry.GetHubFromContext(c.Request.Context()); hub != nil {
			hub.CaptureException(err)
		}
		if ae.Code == "operational_error" {
			response.RespondError(c, ae.Status, ae.Code, errInternal)
			return
		}
	}
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

// respondBindError answers a malformed or invalid request body.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(describeFieldError(fe)))
		return
	}
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
