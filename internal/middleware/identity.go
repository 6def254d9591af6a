package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// Context keys set by RequireSession.
const (
	identityKey = "identity"
	userIDKey   = "user_id"
)

// IdentitySource returns the signed-in identity.  *session.Store
// implements it.
type IdentitySource interface {
	Load(ctx context.Context) (model.User, bool)
}

// RequireSession rejects requests when nobody is signed in and stores the
// identity in the context for handlers and the rate limiter.
func RequireSession(src IdentitySource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := src.Load(c.Request().Context())
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
			}
			c.Set(identityKey, u)
			c.Set(userIDKey, u.UserID)
			return next(c)
		}
	}
}

// Identity returns the identity stored by RequireSession.
func Identity(c echo.Context) (model.User, bool) {
	u, ok := c.Get(identityKey).(model.User)
	return u, ok
}

// userID identifies the caller for rate limiting; "guest" before login.
func userID(c echo.Context) string {
	if v, ok := c.Get(userIDKey).(string); ok && v != "" {
		return v
	}
	return "guest"
}
