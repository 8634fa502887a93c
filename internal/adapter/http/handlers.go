package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handler serves the health probe. Redis may be nil when the service runs
// in degraded mode; it is then reported as "disabled", not as a failure.
type Handler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHandler(gdb *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{db: gdb, rdb: rdb}
}

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	overall := "ok"
	status := http.StatusOK
	mysqlState := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		mysqlState = "down"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	redisState := "disabled"
	if h.rdb != nil {
		redisState = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			redisState = "down"
		}
	}

	return c.JSON(status, map[string]any{
		"status": overall,
		"mysql":  mysqlState,
		"redis":  redisState,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
