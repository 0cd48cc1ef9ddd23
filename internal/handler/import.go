package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/command"
)

// Imports hit upstream sites, so they get more room than plain DB calls.
const importTimeout = 30 * time.Second

// ImportHandler serves the scrape-and-import endpoints.
type ImportHandler struct {
	Commands *bus.CommandBus
}

func NewImportHandler(cb *bus.CommandBus) *ImportHandler {
	return &ImportHandler{Commands: cb}
}

// Playlist handles POST /v1/playlists/import.  It scrapes a public YouTube
// playlist and stores the playlist with its songs.
func (h *ImportHandler) Playlist(c echo.Context) error {
	var body struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), importTimeout)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.ImportPlaylist{
		YouTubePlaylistID: strings.TrimSpace(body.PlaylistID),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// MAL handles POST /v1/import/mal.  It scrapes one status bucket of a
// MyAnimeList user's anime list and merges it into the tracker.
func (h *ImportHandler) MAL(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Status   string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), importTimeout)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.ImportMALList{
		Username: strings.TrimSpace(body.Username),
		Status:   strings.ToUpper(strings.TrimSpace(body.Status)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
