package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-dashboard/internal/cache"
)

// CRUD is the service shape shared by categories, modifiers, menu items
// and zones.  C is the create payload and P the update payload.
type CRUD[T cache.Entity, C any, P any] interface {
	List(ctx context.Context, restaurantID string) ([]cache.Entry[T], error)
	Create(ctx context.Context, restaurantID string, in C) (T, error)
	Update(ctx context.Context, restaurantID, id string, p P) (T, error)
	Delete(ctx context.Context, restaurantID, id string) error
}

// Resource serves list, create, update and delete for one CRUD service.
type Resource[T cache.Entity, C any, P any] struct {
	Svc CRUD[T, C, P]
}

func NewResource[T cache.Entity, C any, P any](svc CRUD[T, C, P]) *Resource[T, C, P] {
	if svc == nil {
		panic("nil service passed to NewResource")
	}
	return &Resource[T, C, P]{Svc: svc}
}

// Register mounts the four routes on g under path.
func (r *Resource[T, C, P]) Register(g *echo.Group, path string) {
	g.GET(path, r.List)
	g.POST(path, r.Create)
	g.PUT(path+"/:id", r.Update)
	g.DELETE(path+"/:id", r.Delete)
}

// List answers {"items":[{"item":{...},"pending":false}, ...]}.
func (r *Resource[T, C, P]) List(c echo.Context) error {
	es, err := r.Svc.List(c.Request().Context(), rid(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries(es)})
}

func (r *Resource[T, C, P]) Create(c echo.Context) error {
	var in C
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return badRequest(c, "invalid request body")
	}
	out, err := r.Svc.Create(c.Request().Context(), rid(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (r *Resource[T, C, P]) Update(c echo.Context) error {
	var p P
	if err := (&echo.DefaultBinder{}).BindBody(c, &p); err != nil {
		return badRequest(c, "invalid request body")
	}
	out, err := r.Svc.Update(c.Request().Context(), rid(c), c.Param("id"), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (r *Resource[T, C, P]) Delete(c echo.Context) error {
	if err := r.Svc.Delete(c.Request().Context(), rid(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
