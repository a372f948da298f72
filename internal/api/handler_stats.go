package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats handles GET /api/stats/dashboard.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
