package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/m1z23r/drift/pkg/drift"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	deps map[string]Pinger
	log  *logger.Logger
}

// NewHealthHandler reports unhealthy when any of the named dependencies
// fails to answer a ping.
func NewHealthHandler(deps map[string]Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, log: log}
}

func (h *HealthHandler) Check(c *drift.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	failed := make([]string, 0)
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.WithError(err).Warn("health check failed", "dependency", name)
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		_ = c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"failed": failed,
		})
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
