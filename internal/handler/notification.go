package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-dashboard/internal/notify"
)

// NotificationHandler exposes the toast the browser should display.
type NotificationHandler struct {
	Toast *notify.Toast
}

// Current handles GET /v1/notifications/current: the visible toast, or
// 204 when nothing is shown.
func (h *NotificationHandler) Current(c echo.Context) error {
	n, ok := h.Toast.Current()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, n)
}

// Dismiss handles DELETE /v1/notifications/current.
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	h.Toast.Dismiss()
	return c.NoContent(http.StatusNoContent)
}
