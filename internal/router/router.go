// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/smartromaric/notes-suite/internal/config"
	"github.com/smartromaric/notes-suite/internal/handler"
	"github.com/smartromaric/notes-suite/internal/middleware"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Auth      *handler.AuthHandler
	Notes     *handler.NoteHandler
	Shares    *handler.ShareHandler
	Public    *handler.PublicHandler
	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// Register mounts all routes on the Echo instance.
//
// Three surfaces exist: unauthenticated auth endpoints under /v1/auth,
// the anonymous public-link resolver at /p/:token, and the protected
// API under /v1 guarded by JWT middleware.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Anonymous resolution of public share links. Rate limited because
	// tokens are guessable only by brute force, and cached because hot
	// public notes are read far more often than they change.
	e.GET("/p/:token", d.Public.Resolve,
		middleware.RateLimit(d.RateLimit, d.Redis),
		middleware.CachePublicNote(d.Cache, d.Redis),
	)

	g := e.Group("/v1/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.JWTSecret))
	auth.Use(middleware.RateLimit(d.RateLimit, d.Redis))

	auth.GET("/me", d.Auth.Me)

	auth.POST("/notes", d.Notes.Create)
	auth.GET("/notes", d.Notes.List)
	auth.GET("/notes/:id", d.Notes.Get)
	auth.PUT("/notes/:id", d.Notes.Update)
	auth.DELETE("/notes/:id", d.Notes.Delete)

	auth.POST("/notes/:id/share/user", d.Shares.ShareWithUser)
	auth.POST("/notes/:id/share/public", d.Shares.CreatePublicLink)
	auth.GET("/notes/:id/shares", d.Shares.ListSharing)
	auth.DELETE("/shares/:id", d.Shares.DeleteShare)
	auth.DELETE("/public-links/:id", d.Shares.DeletePublicLink)
}
