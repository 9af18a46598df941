package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHTTP struct {
	StartedAt time.Time
	Now       func() time.Time
}

func (h *HealthHTTP) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "API Planeta Água funcionando!"})
}

func (h *HealthHTTP) Health(c echo.Context) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	t := now()
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"uptime":    t.Sub(h.StartedAt).Seconds(),
		"timestamp": t.UTC().Format(time.RFC3339),
	})
}
