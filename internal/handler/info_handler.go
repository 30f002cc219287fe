package handler

import (
	"net/http"
	"strings"

	"socialdl/internal/model"
	"socialdl/internal/service"

	"github.com/gin-gonic/gin"
)

// Version is reported by the root descriptor
const Version = "1.0.0"

// InfoHandler serves the capability and classification endpoints
type InfoHandler struct {
	resolveService *service.ResolveService
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(rs *service.ResolveService) *InfoHandler {
	return &InfoHandler{resolveService: rs}
}

// Root handles GET /
func (h *InfoHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"message": "Social Downloader API is running",
		"version": Version,
		"endpoints": gin.H{
			"download":  "POST /api/download",
			"direct":    "GET /api/direct?url=URL",
			"info":      "GET /api/info?url=URL",
			"platforms": "GET /api/platforms",
		},
		"supported_platforms": model.SupportedPlatforms(),
	})
}

// Platforms handles GET /api/platforms
func (h *InfoHandler) Platforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platforms": h.resolveService.Platforms(),
	})
}

// Info handles GET /api/info
func (h *InfoHandler) Info(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "URL parameter is required"})
		return
	}
	c.JSON(http.StatusOK, h.resolveService.Detect(rawURL))
}

// HealthCheck handles GET /api/health
func (h *InfoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "social-downloader",
	})
}

// NotFound answers unmatched routes
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Endpoint not found"})
}
