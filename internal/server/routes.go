package server

import (
	"net/http"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
)

const serviceName = "appshelf-api"

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(skipper)))
	e.Use(middleware.RequestID())
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", config.HEADER_KEY_X_USER_ID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	var limit = s.uploadLimiter()

	var meGroup = e.Group("/api/v1/me", s.AuthMiddleware)
	meGroup.POST("/profile-image", s.UploadProfileImage, limit)
	meGroup.GET("/profile-image", s.GetProfileImage)
	meGroup.GET("/files", s.ListMyFiles)

	var assetGroup = e.Group("/api/v1/apps/:id/assets")
	assetGroup.GET("", s.GetAppAssets)
	assetGroup.GET("/qr", s.GetAppInstallQR)
	assetGroup.PUT("", s.UpsertAppAssets, s.AuthMiddleware, limit)
	assetGroup.DELETE("", s.DeleteAppAssets, s.AuthMiddleware)
	assetGroup.GET("/audit", s.AuditAppAssets, s.AuthMiddleware)

	return e
}

// uploadLimiter throttles uploads per acting identity, falling back to the
// client IP for unauthenticated callers.
func (s *Server) uploadLimiter() echo.MiddlewareFunc {
	burst := max(int(s.uploadRateLimit), 1)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.uploadRateLimit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if uid, ok := userID(c); ok {
				return uid, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, Res{Error: err.Error()})
		},
		DenyHandler: func(c echo.Context, _ string, err error) error {
			return c.JSON(http.StatusTooManyRequests, Res{Error: "rate_limited", Message: "too many uploads, slow down"})
		},
	})
}

func (s *Server) healthHandler(ctx echo.Context) error {
	stats := s.server.Health()
	if stats == nil {
		stats = map[string]string{}
	}
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	if s.queue != nil {
		if err := s.queue.Ping(ctx.Request().Context()); err != nil {
			stats["redis"] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			stats["redis"] = "up"
		}
	}
	return ctx.JSON(status, stats)
}
