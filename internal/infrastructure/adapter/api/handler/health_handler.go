package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/database"
)

// HealthProbe checks a backing dependency
type HealthProbe interface {
	Check(ctx context.Context) database.HealthStatus
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	probe        HealthProbe // nil reports the process only
	timeProvider coreport.TimeProvider
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(probe HealthProbe, timeProvider coreport.TimeProvider) *HealthHandler {
	return &HealthHandler{probe: probe, timeProvider: timeProvider}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Timestamp: h.timeProvider.Now().UTC()}
	if h.probe == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	status := h.probe.Check(c.Request.Context())
	resp.LatencyMs = status.Latency.Milliseconds()
	if !status.Healthy {
		resp.Status = "degraded"
		resp.Database = status.Error
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.Database = "up"
	resp.OpenConns = status.Pool.Open
	resp.InUse = status.Pool.InUse
	c.JSON(http.StatusOK, resp)
}
