// Package server assembles the HTTP router and owns the listening socket.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/smartcampus/portal/backend/handlers"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/config"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/pkg/middleware"
)

// Routes is implemented by every API handler.
type Routes interface {
	Register(rg *gin.RouterGroup, g handlers.Guards)
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Deps is everything NewRouter wires together.
type Deps struct {
	Sessions  *sessions.Service
	Resolver  *auth.RoleResolver
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // optional; enables the shared rate limiter
	Checks    map[string]Check
	Routes    []Routes
	Metrics   http.Handler // defaults to promhttp.Handler()
}

var startTime = time.Now()

// NewRouter builds the gin engine serving the API.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.SessionMiddleware(d.Sessions))

	if d.RateLimit.Enabled {
		if d.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(d.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, d.RateLimit.RPS, d.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(d.RateLimit.RPS, d.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "running"})
	})
	r.GET("/ready", readyHandler(d.Checks))

	mh := d.Metrics
	if mh == nil {
		mh = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(mh))
	handlers.RegisterSwagger(r)

	g := handlers.Guards{
		Session: middleware.RequireSession(),
		Admin:   middleware.RequireRole(d.Resolver, models.RoleAdmin),
		Role:    middleware.ResolveRole(d.Resolver),
	}
	api := r.Group("/api")
	for _, rt := range d.Routes {
		rt.Register(api, g)
	}
	return r
}

// readyHandler answers 200 only when every check passes.
func readyHandler(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}
		for name, check := range checks {
			ok := check(ctx) == nil
			deps[name] = ok
			ready = ready && ok
		}
		uptime := time.Since(startTime).Round(time.Second).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	}
}
