package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/command"
	"github.com/ayaseru/shiori/internal/query"
	"github.com/ayaseru/shiori/internal/repository"
)

// ShowHandler serves the watch-list endpoints.  Mutations go through the
// command bus, reads through the query bus.
type ShowHandler struct {
	Commands *bus.CommandBus
	Queries  *bus.QueryBus
}

func NewShowHandler(cb *bus.CommandBus, qb *bus.QueryBus) *ShowHandler {
	return &ShowHandler{Commands: cb, Queries: qb}
}

type showReq struct {
	Title         string `json:"title"`
	MALID         uint64 `json:"mal_id"`
	ImageURL      string `json:"image_url"`
	TotalEpisodes uint32 `json:"total_episodes"`
	PremiereAt    string `json:"premiere_at"` // RFC3339 or YYYY-MM-DD
	Status        string `json:"status"`
}

// parsePremiere accepts RFC3339 or a bare date; empty means unknown.
func parsePremiere(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Create handles POST /v1/shows.
func (h *ShowHandler) Create(c echo.Context) error {
	var body showReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	premiere, err := parsePremiere(body.PremiereAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid premiere_at format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.AddShow{
		Title:         strings.TrimSpace(body.Title),
		MALID:         body.MALID,
		ImageURL:      strings.TrimSpace(body.ImageURL),
		TotalEpisodes: body.TotalEpisodes,
		PremiereAt:    premiere,
		Status:        strings.ToUpper(strings.TrimSpace(body.Status)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Get handles GET /v1/shows/:id.
func (h *ShowHandler) Get(c echo.Context) error {
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

// List handles GET /v1/shows with an optional ?status= filter.
func (h *ShowHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.ListShows{Status: status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PATCH /v1/shows/:id.  Catalog fields only; watched count
// and watch-list status have their own endpoints.
func (h *ShowHandler) Update(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body showReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	premiere, err := parsePremiere(body.PremiereAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid premiere_at format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.UpdateShow{
		ShowID:        id,
		Title:         strings.TrimSpace(body.Title),
		ImageURL:      strings.TrimSpace(body.ImageURL),
		TotalEpisodes: body.TotalEpisodes,
		PremiereAt:    premiere,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoChange) {
			return c.JSON(http.StatusOK, echo.Map{"message": "no change"})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SetStatus handles POST /v1/shows/:id/status.
func (h *ShowHandler) SetStatus(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.SetShowStatus{
		ShowID: id,
		Status: strings.ToUpper(strings.TrimSpace(body.Status)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RecordWatched handles POST /v1/shows/:id/watched.
func (h *ShowHandler) RecordWatched(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Watched uint32 `json:"watched"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.RecordWatched{ShowID: id, Watched: body.Watched})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /v1/shows/:id.
func (h *ShowHandler) Delete(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Commands.Dispatch(ctx, command.DeleteShow{ShowID: id}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddAlias handles POST /v1/shows/:id/aliases.
func (h *ShowHandler) AddAlias(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.AddAlias{
		ShowID: id,
		Title:  strings.TrimSpace(body.Title),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// DeleteAlias handles DELETE /v1/aliases/:id.
func (h *ShowHandler) DeleteAlias(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid alias id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Commands.Dispatch(ctx, command.DeleteAlias{AliasID: id}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
