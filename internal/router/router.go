// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/wwbing/wxorder/internal/config"
    "github.com/wwbing/wxorder/internal/handler"
    "github.com/wwbing/wxorder/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterOrdering registers the ordering session API under /v1. Every
// route requires a bearer token from the identity provider; the rate
// limiter throttles all of them, while the response cache covers only the
// fixed deadline-option set (session data changes while members submit
// and is served fresh).
//
// Note the route layout: the literal segment "active" is registered
// before the ":id" parameter routes, so echo matches it as a static path
// and "active" is never parsed as a session id.
func RegisterOrdering(e *echo.Echo, cfg config.Config, rdb *redis.Client, sessions *handler.SessionHandler, selections *handler.SelectionHandler, queries *handler.QueryHandler) {
    api := e.Group("/v1")
    api.Use(middleware.JWTAuth(cfg.JWTSecret))
    api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    // Lifecycle (creator-controlled)
    api.POST("/sessions", sessions.CreateSession)
    api.POST("/sessions/:id/close", sessions.CloseSession)
    api.DELETE("/sessions/:id", sessions.CancelSession)

    // Member selections
    api.PUT("/sessions/:id/selection", selections.SubmitSelection)
    api.GET("/sessions/:id/selection", selections.GetMySelection)
    api.DELETE("/sessions/:id/selection", selections.DeleteMySelection)

    // Read-only projections
    api.GET("/sessions/active", queries.GetActiveSession)
    api.GET("/sessions", queries.ListSessions)
    api.GET("/sessions/:id", queries.GetSession)
    api.GET("/sessions/:id/summary", queries.GetSessionSummary)

    cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    api.GET("/ordering/deadline-options", queries.GetDeadlineOptions, cached)
}
