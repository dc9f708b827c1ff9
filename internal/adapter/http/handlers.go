package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Probe reports whether a backing service answers.
type Probe func(ctx context.Context) error

type Handler struct{ probes map[string]Probe }

func NewHandler(probes map[string]Probe) *Handler { return &Handler{probes: probes} }

// Health answers 503 "degraded" when any probe fails.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	code, status := http.StatusOK, "ok"
	checks := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			code, status = http.StatusServiceUnavailable, "degraded"
			continue
		}
		checks[name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
		"checks": checks,
	})
}
