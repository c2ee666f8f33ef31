package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/feedback/api/http/presenter"
	"github.com/artem13815/feedback/pkg/health"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc          health.ReadinessUseCase
	readyTimeout time.Duration
}

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler {
	return &HealthHandler{svc: svc, readyTimeout: time.Second}
}

type probeResponse struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// Health reports that the process is up. It never touches the LLM provider.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} probeResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, probeResponse{Status: "ok"})
}

// Ready reports whether the configured provider can serve /analyze.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} probeResponse
// @Failure 503 {object} probeResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.readyTimeout)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		return presenter.JSON(c, http.StatusServiceUnavailable, probeResponse{
			Status:  "not_ready",
			Details: err.Error(),
		})
	}
	return presenter.JSON(c, http.StatusOK, probeResponse{Status: "ready"})
}
