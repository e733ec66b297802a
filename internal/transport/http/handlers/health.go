package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck pings a backing dependency.
type ReadinessCheck func(ctx context.Context) error

type namedCheck struct {
	name  string
	check ReadinessCheck
}

// HealthHandler reports liveness and readiness of the service.
type HealthHandler struct {
	checks  []namedCheck
	timeout time.Duration
}

// HealthOption customises the health handler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck registers a named dependency check for the readiness probe.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandler) {
		if check == nil {
			return
		}
		h.checks = append(h.checks, namedCheck{name: name, check: check})
	}
}

// WithReadinessTimeout overrides the per-probe deadline.
func WithReadinessTimeout(timeout time.Duration) HealthOption {
	return func(h *HealthHandler) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{timeout: 2 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status handles the liveness probe.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness pings each registered dependency with a short deadline and
// reports per-dependency state.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, item := range h.checks {
		if err := item.check(ctx); err != nil {
			results[item.name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[item.name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, HealthResponse{Status: overall, Checks: results})
}
