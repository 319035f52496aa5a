package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evelynko/skinsight/internal/domain/auth"
	"github.com/evelynko/skinsight/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(nil),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/refresh", handler.Refresh)
			authGroup.GET("/google/url", handler.GoogleAuthURL)
			authGroup.GET("/google/callback", handler.GoogleCallback)
		}

		guarded := api.Group("")
		guarded.Use(authMiddleware(authSvc))
		{
			guarded.GET("/auth/me", handler.Me)
			guarded.POST("/auth/logout", handler.Logout)

			guarded.POST("/scan/analyze", handler.AnalyzeScan)
			guarded.GET("/scan/latest", handler.LatestAnalysis)
			guarded.POST("/scan/sessions", handler.StartSession)
			guarded.POST("/scan/sessions/:id/frames", handler.SessionFrame)
			guarded.POST("/scan/sessions/:id/complete", handler.CompleteSession)
			guarded.DELETE("/scan/sessions/:id", handler.CancelSession)

			guarded.GET("/profile", handler.Profile)
			guarded.PUT("/profile/preferences", handler.UpdatePreferences)
			guarded.GET("/prescription", handler.Prescription)
			guarded.GET("/routine", handler.RoutinePlan)

			guarded.POST("/products/scan", handler.ScanProduct)
			guarded.GET("/products", handler.ListProducts)
			guarded.GET("/products/:id/audit", handler.AuditProduct)
			guarded.GET("/products/:id/similar", handler.SimilarProducts)
			guarded.POST("/products/decision", handler.ProductDecision)
			guarded.GET("/shelf/health", handler.ShelfHealth)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
