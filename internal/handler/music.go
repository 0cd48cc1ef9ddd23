package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/command"
	"github.com/ayaseru/shiori/internal/query"
	"github.com/ayaseru/shiori/internal/repository"
)

// MusicHandler serves the song library and playlist endpoints.
type MusicHandler struct {
	Commands *bus.CommandBus
	Queries  *bus.QueryBus
}

func NewMusicHandler(cb *bus.CommandBus, qb *bus.QueryBus) *MusicHandler {
	return &MusicHandler{Commands: cb, Queries: qb}
}

// CreateSong handles POST /v1/songs.
func (h *MusicHandler) CreateSong(c echo.Context) error {
	var body struct {
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		VideoID  string `json:"video_id"`
		Favorite bool   `json:"favorite"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.AddSong{
		Title:    strings.TrimSpace(body.Title),
		Artist:   strings.TrimSpace(body.Artist),
		VideoID:  strings.TrimSpace(body.VideoID),
		Favorite: body.Favorite,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// ListSongs handles GET /v1/songs with an optional ?favorites=true filter.
func (h *MusicHandler) ListSongs(c echo.Context) error {
	favorites := strings.EqualFold(c.QueryParam("favorites"), "true")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.ListSongs{FavoritesOnly: favorites})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SearchSongs handles GET /v1/search/songs?q=&favorites=&page=&page_size=.
// The text matches song titles and artists.
func (h *MusicHandler) SearchSongs(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.SearchSongs{
		Text:          strings.TrimSpace(c.QueryParam("q")),
		FavoritesOnly: strings.EqualFold(c.QueryParam("favorites"), "true"),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateSong handles PATCH /v1/songs/:id.
func (h *MusicHandler) UpdateSong(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid song id"})
	}
	var body struct {
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		Favorite bool   `json:"favorite"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.UpdateSong{
		SongID:   id,
		Title:    strings.TrimSpace(body.Title),
		Artist:   strings.TrimSpace(body.Artist),
		Favorite: body.Favorite,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoChange) {
			return c.JSON(http.StatusOK, echo.Map{"message": "no change"})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SetFavorite handles POST /v1/songs/:id/favorite.
func (h *MusicHandler) SetFavorite(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid song id"})
	}
	var body struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.SetFavorite{SongID: id, Favorite: body.Favorite})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteSong handles DELETE /v1/songs/:id.
func (h *MusicHandler) DeleteSong(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid song id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Commands.Dispatch(ctx, command.DeleteSong{SongID: id}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPlaylists handles GET /v1/playlists.
func (h *MusicHandler) ListPlaylists(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.ListPlaylists{})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetPlaylist handles GET /v1/playlists/:id.
func (h *MusicHandler) GetPlaylist(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid playlist id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Queries.Dispatch(ctx, query.GetPlaylist{PlaylistID: id})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RenamePlaylist handles PATCH /v1/playlists/:id.
func (h *MusicHandler) RenamePlaylist(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid playlist id"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Commands.Dispatch(ctx, command.RenamePlaylist{
		PlaylistID: id,
		Name:       strings.TrimSpace(body.Name),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoChange) {
			return c.JSON(http.StatusOK, echo.Map{"message": "no change"})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// DeletePlaylist handles DELETE /v1/playlists/:id.  Playlists that still
// hold songs return 409.
func (h *MusicHandler) DeletePlaylist(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid playlist id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Commands.Dispatch(ctx, command.DeletePlaylist{PlaylistID: id}); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
