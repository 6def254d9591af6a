// Package router mounts the console's HTTP surface on echo.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-dashboard/internal/config"
	"github.com/iliyamo/restaurant-dashboard/internal/handler"
	"github.com/iliyamo/restaurant-dashboard/internal/middleware"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/notify"
	"github.com/iliyamo/restaurant-dashboard/internal/service"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Dash      *service.Dashboard
	Auth      *service.AuthService
	Identity  middleware.IdentitySource
	Toast     *notify.Toast
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Log       *slog.Logger
}

// Register mounts every route on e.
func Register(e *echo.Echo, d Deps) {
	health := &handler.HealthHandler{Redis: d.Redis}
	e.GET("/healthz", health.Health)

	limit := middleware.RateLimit(d.RateLimit, d.Redis, d.Log)
	auth := handler.NewAuthHandler(d.Auth, d.Dash.Restaurants)

	// login is throttled per IP since nobody is signed in yet
	e.POST("/v1/auth/login", auth.Login, limit)
	e.POST("/v1/auth/logout", auth.Logout)

	v1 := e.Group("/v1", middleware.RequireSession(d.Identity), limit)
	v1.GET("/me", auth.Me)
	v1.GET("/restaurant", auth.Restaurant)
	v1.PUT("/restaurant", auth.UpdateRestaurant)
	v1.GET("/restaurant/stats", auth.Stats)

	notes := &handler.NotificationHandler{Toast: d.Toast}
	v1.GET("/notifications/current", notes.Current)
	v1.DELETE("/notifications/current", notes.Dismiss)

	registerRestaurant(v1.Group("/restaurants/:rid", middleware.RequireRestaurant("rid")), d.Dash)
}

func registerRestaurant(g *echo.Group, dash *service.Dashboard) {
	handler.NewResource[model.Category, model.CategoryInput, model.CategoryPatch](dash.Categories).Register(g, "/categories")
	handler.NewResource[model.Modifier, model.ModifierInput, model.ModifierPatch](dash.Modifiers).Register(g, "/modifiers")
	handler.NewResource[model.MenuItem, model.MenuItemInput, model.MenuItemPatch](dash.MenuItems).Register(g, "/menu-items")
	handler.NewResource[model.DeliveryZone, model.ZoneInput, model.ZonePatch](dash.Zones).Register(g, "/zones")

	h := handler.NewDashboardHandler(dash)
	g.POST("/menu-items/:id/image", h.UploadImage)
	g.DELETE("/menu-items/:id/image", h.DeleteImage)
	g.GET("/menu-items/:id/modifiers", h.ListItemModifiers)
	g.POST("/menu-items/:id/modifiers", h.LinkModifier)
	g.DELETE("/menu-items/:id/modifiers/:mid", h.UnlinkModifier)

	g.GET("/zones/:id/map", h.GetBoundary)
	g.POST("/zones/:id/boundary", h.SetBoundary)

	g.GET("/hours", h.ListHours)
	g.PUT("/hours", h.ReplaceHours)
	g.DELETE("/hours", h.DeleteHours)

	g.GET("/calls", h.ListCalls)
	g.GET("/calls/export", h.ExportCalls)
	g.GET("/calls/:id", h.GetCall)

	g.GET("/menu/export", h.ExportMenu)
	g.POST("/menu/import", h.ImportMenu)
}
