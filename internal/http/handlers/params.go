package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/services"
)

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return uint(n), true
}

// optionalInt parses a query parameter; absent gives nil.
func optionalInt(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(name+" must be an integer"))
		return nil, false
	}
	return &n, true
}

func optionalUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(name+" must be a positive integer"))
		return nil, false
	}
	v := uint(n)
	return &v, true
}

// page reads ?skip= and ?limit=.
func page(c *gin.Context) (services.Page, bool) {
	skip, ok := optionalInt(c, "skip")
	if !ok {
		return services.Page{}, false
	}
	limit, ok := optionalInt(c, "limit")
	if !ok {
		return services.Page{}, false
	}
	var p services.Page
	if skip != nil && *skip > 0 {
		p.Offset = *skip
	}
	if limit != nil && *limit > 0 {
		p.Limit = *limit
	}
	return p, true
}
