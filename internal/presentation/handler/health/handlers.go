package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/hilthontt/ridehail/internal/infrastructure/json"
)

const (
	rootMessage  = "Ride-hailing backend is running"
	checkTimeout = 2 * time.Second
)

var startTime = time.Now()

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

type Handler struct {
	checks map[string]Checker
}

func NewHandler(checks map[string]Checker) *Handler {
	return &Handler{checks: checks}
}

// GetRoot godoc
// @Summary      Liveness
// @Description  Plain text banner confirming the process is serving
// @Tags         health
// @Produce      plain
// @Success      200 {string} string "Ride-hailing backend is running"
// @Router       / [get]
func (h *Handler) GetRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rootMessage))
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API and its dependencies
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "A dependency is unreachable"
// @Router       /api/health [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := h.checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	json.Write(w, status, resp)
}
