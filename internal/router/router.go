package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Iliyas128/flight-connect-backend/internal/config"
	"github.com/Iliyas128/flight-connect-backend/internal/handler"
	"github.com/Iliyas128/flight-connect-backend/internal/middleware"
)

// Handlers groups everything the router needs to wire the API.
type Handlers struct {
	Auth         *handler.AuthHandler
	Sessions     *handler.SessionHandler
	Participants *handler.ParticipantHandler
	Keys         *handler.KeyHandler
}

// RegisterRoutes wires the full HTTP surface. Redis may be nil; the
// rate-limit and cache middleware pass through in that case.
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	rl := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cache := middleware.CacheGET(config.LoadCacheConfig(), rdb)

	// Public browse endpoints. Cached because they are the hot path for
	// pilots polling the schedule.
	e.GET("/v1/sessions", h.Sessions.List, rl, cache)
	e.GET("/v1/sessions/upcoming", h.Sessions.Upcoming, rl, cache)
	e.GET("/v1/sessions/:id", h.Sessions.Get, rl, cache)
	e.GET("/v1/sessions/:id/participants", h.Participants.List, rl, cache)

	// Auth. Logout is deliberately unprotected: a client holding only a
	// refresh token must still be able to revoke it.
	g := e.Group("/v1/auth", rl)
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	g.POST("/logout", h.Auth.Logout)

	// Any authenticated user.
	auth := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)
	auth.POST("/sessions/:id/participants", h.Participants.Register,
		middleware.RequireRole("PILOT", "SCHEDULER"), rl)

	// Scheduling desk only.
	sched := auth.Group("", middleware.RequireRole("SCHEDULER"))
	sched.POST("/sessions", h.Sessions.Create)
	sched.PATCH("/sessions/:id", h.Sessions.Update)
	sched.DELETE("/sessions/:id", h.Sessions.Delete)
	sched.PATCH("/participants/:id/validation", h.Participants.SetValidation)
	sched.POST("/sessions/:id/keys", h.Keys.Issue)
	sched.GET("/sessions/:id/keys", h.Keys.ListBySession)
	sched.POST("/keys", h.Keys.Generate)
}
