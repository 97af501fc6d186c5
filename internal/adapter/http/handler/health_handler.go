package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadinessTimeout bounds all dependency checks of one readiness check.
const ReadinessTimeout = 5 * time.Second

type poolPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type dependencyCheck struct {
	name  string
	check func(ctx context.Context) error
}

// HealthHandler reports liveness and the reachability of Postgres (statement
// tables) and Redis (flash messages).
type HealthHandler struct {
	checks []dependencyCheck
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool poolPinger, redisClient redisPinger) *HealthHandler {
	return &HealthHandler{
		checks: []dependencyCheck{
			{name: "postgres", check: pool.Ping},
			{name: "redis", check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		},
	}
}

// Liveness returns 200 if the process is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness runs every dependency check and returns 503 naming the first
// failure.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ReadinessTimeout)
	defer cancel()

	body := map[string]string{"status": "ready"}
	for _, c := range h.checks {
		if err := c.check(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, c.name+" unhealthy", err.Error())
			return
		}
		body[c.name] = "ok"
	}

	writeJSON(w, http.StatusOK, body)
}
