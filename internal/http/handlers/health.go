package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/http/response"
)

type HealthHandler struct {
	name    string
	version string
}

func NewHealthHandler(name, version string) *HealthHandler {
	return &HealthHandler{name: name, version: version}
}

// GET /
func (h *HealthHandler) Root(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"message": h.name,
		"version": h.version,
		"docs":    "/health",
	})
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.RespondOK(c, gin.H{"status": "healthy", "message": "API is running"})
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
