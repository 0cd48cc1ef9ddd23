package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/command"
	"github.com/ayaseru/shiori/internal/query"
)

// ScheduleHandler serves the weekly schedule view and its overrides.
type ScheduleHandler struct {
	Commands *bus.CommandBus
	Queries  *bus.QueryBus
	Now      func() time.Time // test seam; defaults to time.Now
}

func NewScheduleHandler(cb *bus.CommandBus, qb *bus.QueryBus) *ScheduleHandler {
	return &ScheduleHandler{Commands: cb, Queries: qb}
}

func (h *ScheduleHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// Week handles GET /v1/schedule/week?date=YYYY-MM-DD.  Missing date means
// the week starting today.
func (h *ScheduleHandler) Week(c echo.Context) error {
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

// SetOverride handles POST /v1/shows/:id/overrides.
func (h *ScheduleHandler) SetOverride(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		WeekOf string `json:"week_of"` // YYYY-MM-DD
		Action string `json:"action"`  // SKIP | DOUBLE
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	weekOf, err := time.Parse("2006-01-02", strings.TrimSpace(body.WeekOf))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid week_of, want YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.SetOverride{
		ShowID: id,
		WeekOf: weekOf.UTC(),
		Action: strings.ToUpper(strings.TrimSpace(body.Action)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// DeleteOverride handles DELETE /v1/overrides/:id.
func (h *ScheduleHandler) DeleteOverride(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid override id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Commands.Dispatch(ctx, command.DeleteOverride{OverrideID: id}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
