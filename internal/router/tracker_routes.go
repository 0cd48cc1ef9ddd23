package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/handler"
	"github.com/ayaseru/shiori/internal/middleware"
)

// RegisterTracker wires the watch-list, schedule and music endpoints under
// the protected /v1 group.  Members may read; mutations are admin-only.
func RegisterTracker(e *echo.Echo, s *handler.ShowHandler, sc *handler.ScheduleHandler,
	m *handler.MusicHandler, imp *handler.ImportHandler, jwtSecret string) {

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "MEMBER"))

	// Reads for any authenticated role.
	auth.GET("/shows", s.List)
	auth.GET("/shows/:id", s.Get)
	auth.GET("/schedule/week", sc.Week)
	auth.GET("/songs", m.ListSongs)
	auth.GET("/search/songs", m.SearchSongs)
	auth.GET("/playlists", m.ListPlaylists)
	auth.GET("/playlists/:id", m.GetPlaylist)

	// Mutations require the ADMIN role on top of a valid token.
	admin := auth.Group("", middleware.RequireRole("ADMIN"))

	admin.POST("/shows", s.Create)
	admin.PATCH("/shows/:id", s.Update)
	admin.DELETE("/shows/:id", s.Delete)
	admin.POST("/shows/:id/status", s.SetStatus)
	admin.POST("/shows/:id/watched", s.RecordWatched)
	admin.POST("/shows/:id/aliases", s.AddAlias)
	admin.DELETE("/aliases/:id", s.DeleteAlias)

	admin.POST("/shows/:id/overrides", sc.SetOverride)
	admin.DELETE("/overrides/:id", sc.DeleteOverride)

	admin.POST("/songs", m.CreateSong)
	admin.PATCH("/songs/:id", m.UpdateSong)
	admin.POST("/songs/:id/favorite", m.SetFavorite)
	admin.DELETE("/songs/:id", m.DeleteSong)
	admin.PATCH("/playlists/:id", m.RenamePlaylist)
	admin.DELETE("/playlists/:id", m.DeletePlaylist)

	admin.POST("/playlists/import", imp.Playlist)
	admin.POST("/import/mal", imp.MAL)
}
