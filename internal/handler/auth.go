package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-dashboard/internal/middleware"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
	"github.com/iliyamo/restaurant-dashboard/internal/service"
)

// AuthHandler bundles the session endpoints and the restaurant lookup of
// the signed-in user.
type AuthHandler struct {
	Auth        *service.AuthService
	Restaurants *service.RestaurantService
}

func NewAuthHandler(a *service.AuthService, r *service.RestaurantService) *AuthHandler {
	if a == nil || r == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: a, Restaurants: r}
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.Credentials
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return badRequest(c, "invalid request body")
	}
	u, err := h.Auth.Login(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Logout handles POST /v1/auth/logout.  It always clears the local
// identity; a backend failure is still reported.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Auth.Logout(c.Request().Context()); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// noRestaurant is the empty state shown to a user without a restaurant.
const noRestaurant = "Your account is not linked to a restaurant yet. Contact support to finish setup."

// Restaurant handles GET /v1/restaurant.  A user without a restaurant
// gets {"restaurant":null,"reason":...} rather than an error.
func (h *AuthHandler) Restaurant(c echo.Context) error {
	r, err := h.Restaurants.Mine(c.Request().Context())
	switch {
	case errors.Is(err, repository.ErrNoRestaurant):
		return c.JSON(http.StatusOK, echo.Map{"restaurant": nil, "reason": noRestaurant})
	case err != nil:
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant": r})
}

// UpdateRestaurant handles PUT /v1/restaurant.
func (h *AuthHandler) UpdateRestaurant(c echo.Context) error {
	u, _ := middleware.Identity(c)
	if u.RestaurantID == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": noRestaurant})
	}
	var p model.RestaurantPatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &p); err != nil {
		return badRequest(c, "invalid request body")
	}
	r, err := h.Restaurants.Update(c.Request().Context(), u.RestaurantID, p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant": r})
}

// Stats handles GET /v1/restaurant/stats.
func (h *AuthHandler) Stats(c echo.Context) error {
	u, _ := middleware.Identity(c)
	if u.RestaurantID == "" {
		return c.JSON(http.StatusOK, echo.Map{"stats": nil, "reason": noRestaurant})
	}
	s, err := h.Restaurants.Stats(c.Request().Context(), u.RestaurantID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": s})
}
