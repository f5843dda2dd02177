package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docstream-backend/internal/shared/auth"
	"docstream-backend/internal/shared/config"
	"docstream-backend/internal/shared/metrics"
	"docstream-backend/internal/shared/server/middleware"
	"docstream-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a handler's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter needs to wire routes.
type RouterDeps struct {
	Config   config.Config
	Tokens   *auth.Tokens
	Handlers []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Tokens),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "env": deps.Config.Env})
	})

	for _, handler := range deps.Handlers {
		handler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
