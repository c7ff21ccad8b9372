package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const pingTimeout = 5 * time.Second

type healthBody struct {
	Status    string `json:"status"`
	OpenConns int32  `json:"openConns"`
	IdleConns int32  `json:"idleConns"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler pings the database and reports current pool occupancy.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		stat := pool.Stat()
		body := healthBody{
			Status:    "ok",
			OpenConns: stat.TotalConns(),
			IdleConns: stat.IdleConns(),
		}
		if err := pool.Ping(ctx); err != nil {
			body.Status = "unavailable"
			body.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
		return c.JSON(http.StatusOK, body)
	}
}
