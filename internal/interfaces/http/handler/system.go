package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles liveness and version endpoints
type SystemHandler struct {
	BaseHandler
	name    string
	version string
}

// NewSystemHandler creates a SystemHandler
func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{name: name, version: version}
}

// Ping responds to liveness probes
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Info returns service identification
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"name":    h.name,
		"version": h.version,
		"time":    time.Now().Format(time.RFC3339),
	})
}
