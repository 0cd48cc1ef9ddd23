package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/query"
)

// PublicHandler serves unauthenticated browse endpoints.  Guests can look
// at the watch list, show details, search and the weekly schedule without
// a session; everything goes through the cached query bus.
type PublicHandler struct {
	Queries *bus.QueryBus
	Now     func() time.Time // test seam; defaults to time.Now
}

func NewPublicHandler(qb *bus.QueryBus) *PublicHandler {
	return &PublicHandler{Queries: qb}
}

func (h *PublicHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// BrowseShows handles GET /v1/browse/shows.
func (h *PublicHandler) BrowseShows(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.ListShows{Status: status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// BrowseShow handles GET /v1/browse/shows/:id.
func (h *PublicHandler) BrowseShow(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.GetShow{ShowID: id})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SearchShows handles GET /v1/search/shows?q=&status=&page=&page_size=.
// Alias titles match too.
func (h *PublicHandler) SearchShows(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.SearchShows{
		Title:    strings.TrimSpace(c.QueryParam("q")),
		Status:   strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// BrowseWeek handles GET /v1/browse/schedule/week?date=YYYY-MM-DD.
func (h *PublicHandler) BrowseWeek(c echo.Context) error {
	start := h.now().Truncate(24 * time.Hour)
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		start = t.UTC()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.WeekSchedule{WeekStart: start})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
