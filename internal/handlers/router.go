package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/JanConnect/JanConnect-sub001/internal/middleware"
)

// RouterConfig controls the optional parts of the router
type RouterConfig struct {
	Environment    string
	AllowedOrigins []string
	Tracing        bool
	ServiceName    string
}

// SetupRouter wires middleware and routes
func SetupRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	if cfg.Environment == "development" {
		api.POST("/auth/dev-token", h.DevToken)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(h.auth))
	{
		authed.GET("/feed", h.GetFeed)
		authed.POST("/feed/refresh", h.RefreshFeed)
		authed.POST("/feed/more", h.LoadMore)

		authed.POST("/posts/:id/support", h.SupportPost)
		authed.POST("/posts/:id/escalate", h.EscalatePost)
		authed.POST("/posts/:id/amplify", h.AmplifyPost)
		authed.POST("/posts/:id/comments", h.AddComment)
		authed.GET("/posts/:id/comments", h.GetComments)
		authed.POST("/posts/:id/save", h.SavePost)
		authed.DELETE("/posts/:id/save", h.UnsavePost)

		authed.GET("/saved", h.GetSavedPosts)
		authed.DELETE("/interactions", h.ResetInteractions)
		authed.GET("/leaderboard", h.GetLeaderboard)
		authed.GET("/trending/remote", h.GetRemoteTopics)
	}

	return r
}
