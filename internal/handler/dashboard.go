package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/report"
	"github.com/iliyamo/restaurant-dashboard/internal/service"
)

// DashboardHandler serves the restaurant scoped endpoints that go beyond
// plain CRUD.
type DashboardHandler struct {
	Dash *service.Dashboard
	Now  func() time.Time
}

func NewDashboardHandler(d *service.Dashboard) *DashboardHandler {
	if d == nil {
		panic("nil dashboard passed to NewDashboardHandler")
	}
	return &DashboardHandler{Dash: d, Now: time.Now}
}

// UploadImage handles POST .../menu-items/:id/image with multipart field
// "file".
func (h *DashboardHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "could not read upload")
	}
	defer f.Close()
	item, err := h.Dash.MenuItems.UploadImage(c.Request().Context(), rid(c), c.Param("id"), service.ImageFile{Name: fh.Filename, Body: f})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *DashboardHandler) DeleteImage(c echo.Context) error {
	item, err := h.Dash.MenuItems.DeleteImage(c.Request().Context(), rid(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *DashboardHandler) ListItemModifiers(c echo.Context) error {
	links, err := h.Dash.MenuItems.Modifiers(c.Request().Context(), rid(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": links})
}

func (h *DashboardHandler) LinkModifier(c echo.Context) error {
	var in model.LinkModifierInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return badRequest(c, "invalid request body")
	}
	link, err := h.Dash.MenuItems.LinkModifier(c.Request().Context(), rid(c), c.Param("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, link)
}

func (h *DashboardHandler) UnlinkModifier(c echo.Context) error {
	if err := h.Dash.MenuItems.UnlinkModifier(c.Request().Context(), rid(c), c.Param("id"), c.Param("mid")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetBoundary handles POST .../zones/:id/boundary with {"boundary": g},
// where g is a GeoJSON Polygon or a Feature wrapping one.
func (h *DashboardHandler) SetBoundary(c echo.Context) error {
	var body struct {
		Boundary *model.GeoPolygon `json:"boundary"`
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return badRequest(c, "invalid GeoJSON")
	}
	if body.Boundary == nil {
		return badRequest(c, "boundary is required")
	}
	zone, err := h.Dash.Zones.SetBoundary(c.Request().Context(), rid(c), c.Param("id"), *body.Boundary)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, zone)
}

// GetBoundary handles GET .../zones/:id/map; 204 when no boundary is set.
func (h *DashboardHandler) GetBoundary(c echo.Context) error {
	g, err := h.Dash.Zones.Boundary(c.Request().Context(), rid(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if g == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *DashboardHandler) ListHours(c echo.Context) error {
	es, err := h.Dash.Hours.List(c.Request().Context(), rid(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries(es)})
}

// ReplaceHours handles PUT .../hours with {"hours":[...]}.
func (h *DashboardHandler) ReplaceHours(c echo.Context) error {
	var body struct {
		Hours []model.HourInput `json:"hours"`
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return badRequest(c, "invalid request body")
	}
	week, err := h.Dash.Hours.Replace(c.Request().Context(), rid(c), body.Hours)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": week})
}

func (h *DashboardHandler) DeleteHours(c echo.Context) error {
	if err := h.Dash.Hours.DeleteAll(c.Request().Context(), rid(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCalls handles GET .../calls?limit=N.  N is clamped to 1..200.
func (h *DashboardHandler) ListCalls(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "limit must be a number")
		}
		limit = n
	}
	calls, err := h.Dash.Calls.List(c.Request().Context(), rid(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": calls})
}

func (h *DashboardHandler) GetCall(c echo.Context) error {
	call, err := h.Dash.Calls.Get(c.Request().Context(), rid(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, call)
}

func (h *DashboardHandler) ExportCalls(c echo.Context) error {
	return h.download(c, "calls", h.Dash.Calls.Export)
}

func (h *DashboardHandler) ExportMenu(c echo.Context) error {
	return h.download(c, "menu", h.Dash.ExportMenu)
}

// download buffers the workbook so a failure can still answer with JSON.
func (h *DashboardHandler) download(c echo.Context, name string, write func(context.Context, string, io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(c.Request().Context(), rid(c), &buf); err != nil {
		return fail(c, err)
	}
	filename := fmt.Sprintf("%s-%s.xlsx", name, h.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}

// ImportMenu handles POST .../menu/import with an xlsx in field "file".
func (h *DashboardHandler) ImportMenu(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "could not read upload")
	}
	defer f.Close()
	res, err := h.Dash.MenuItems.Import(c.Request().Context(), rid(c), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
