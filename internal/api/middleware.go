// middleware.go - Common middleware stack
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/logshare/backend/internal/config"
	"github.com/logshare/backend/internal/encoding"
)

// SetupMiddleware configures the middleware chain and error handler.
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *zap.Logger) {
	e.HTTPErrorHandler = NewErrorHandler(logger, cfg.Logging.Level == "debug")

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Logging.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/health" || path == cfg.Metrics.Path
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("handler panic",
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.ByteString("stack", stack),
			)
			return err
		},
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: cfg.Server.WriteTimeout,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == cfg.Metrics.Path
		},
		ErrorMessage: "Request timeout",
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderContentEncoding, echo.HeaderAccept, echo.HeaderAcceptEncoding},
		MaxAge:       int((24 * time.Hour).Seconds()),
	}))

	e.Use(AdvertiseEncodings)
}

// AdvertiseEncodings lists the request body encodings the service accepts.
func AdvertiseEncodings(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderAcceptEncoding, encoding.AcceptEncoding())
		return next(c)
	}
}
