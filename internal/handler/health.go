package handler // handler contains the echo handlers of the console

import (
    "context"  // context bounds the redis ping
    "net/http" // net/http provides status codes
    "time"     // time sets the ping timeout

    "github.com/labstack/echo/v4"  // echo is the web framework used for this project
    "github.com/redis/go-redis/v9" // redis backs the session store and rate limiter
)

// HealthHandler reports liveness.  Redis is optional, so its state is
// reported but never fails the check.
type HealthHandler struct {
    Redis *redis.Client // Redis may be nil when the console runs without it
}

// Health answers GET /healthz with {"status":"ok","redis":"up|down|disabled"}.
func (h *HealthHandler) Health(c echo.Context) error {
    state := "disabled" // no client configured
    if h.Redis != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second) // never hang a probe on redis
        defer cancel()
        state = "up"
        if err := h.Redis.Ping(ctx).Err(); err != nil {
            state = "down" // the console keeps working from memory
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "redis": state})
}
