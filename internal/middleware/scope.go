package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRestaurant lets a request through only when the restaurant named
// by the path parameter is the one the signed-in user owns.  It must run
// after RequireSession.
func RequireRestaurant(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := Identity(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
			}
			if u.RestaurantID == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "no restaurant linked to this account"})
			}
			if c.Param(param) != u.RestaurantID {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
