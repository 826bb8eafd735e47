package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

// HealthResponse reports liveness and build identity.
type HealthResponse struct {
	Status      string    `json:"status" example:"healthy"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service" example:"ai-content-studio"`
	Version     string    `json:"version" example:"2.0.0"`
	Uptime      string    `json:"uptime" example:"2h3m4s"`
	Environment string    `json:"environment" example:"production"`
}

// Health godoc
// @ID          health
// @Summary     Liveness
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	var up time.Duration
	if h.analytics != nil {
		up = h.analytics.Uptime()
	}
	ok(c, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   h.now(),
		Service:     h.info.Service,
		Version:     h.info.Version,
		Uptime:      sysutil.HumanDuration(up),
		Environment: h.info.Environment,
	})
}
