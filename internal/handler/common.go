package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// entryView is a cached entity as rendered to the browser.  Pending marks
// an optimistic placeholder the backend has not confirmed yet.
type entryView[T any] struct {
	Item    T    `json:"item"`
	Pending bool `json:"pending"`
}

func entries[T cache.Entity](es []cache.Entry[T]) []entryView[T] {
	out := make([]entryView[T], len(es))
	for i, e := range es {
		out[i] = entryView[T]{Item: e.Value, Pending: e.Pending()}
	}
	return out
}

// statusOf maps an error to the status the console answers with.  Backend
// outages and 5xx replies become 502: the console itself is fine.
func statusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrNoRestaurant):
		return http.StatusForbidden
	case errors.Is(err, cache.ErrScopeMismatch):
		return http.StatusBadGateway
	}
	switch backend.Classify(err) {
	case backend.KindValidation:
		return http.StatusUnprocessableEntity
	case backend.KindUnauthorized:
		return http.StatusUnauthorized
	case backend.KindForbidden:
		return http.StatusForbidden
	case backend.KindNotFound:
		return http.StatusNotFound
	case backend.KindNetwork, backend.KindServer:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes {"error": message} with the mapped status.
func fail(c echo.Context, err error) error {
	return c.JSON(statusOf(err), echo.Map{"error": backend.Message(err, backend.MsgGeneric)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// rid is the restaurant path parameter, already checked by the scope guard.
func rid(c echo.Context) string { return c.Param("rid") }
