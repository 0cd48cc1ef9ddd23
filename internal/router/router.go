package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ayaseru/shiori/internal/handler"
	"github.com/ayaseru/shiori/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication.  Currently
// only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints and the protected /v1/me route.
// Unauthenticated operations live under /v1/auth, protected ones under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh_token body or a bearer token; it does not
	// require the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "MEMBER"))
	auth.GET("/me", a.Me)

	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints.  cache may
// be a pass-through middleware when response caching is disabled.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/browse/shows", p.BrowseShows)
	g.GET("/browse/shows/:id", p.BrowseShow)
	g.GET("/browse/schedule/week", p.BrowseWeek)
	g.GET("/search/shows", p.SearchShows)
}
