// Package http assembles the API surface. Each domain module mounts its
// own routes on the groups of a RouterContext; cmd/api builds the App.
package http

import (
	"context"

	"koppara_backend/platform/config"
	"koppara_backend/platform/httpkit"
	"koppara_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health. *pgxpool.Pool satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything the router needs, wired by the composition root.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}

// Module is a bounded context with HTTP routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups by audience:
//
//	V1         /api/v1, no authentication
//	Protected  /api/v1, any valid access token
//	Admin      /api/v1/admin, access token with the admin role
type RouterContext struct {
	Engine            *gin.Engine
	V1                *gin.RouterGroup
	Protected         *gin.RouterGroup
	Admin             *gin.RouterGroup
	Config            config.JWTConfig
	PublicRateLimiter *httpkit.RateLimiter
}
