// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/logshare/backend/internal/config"
	"github.com/logshare/backend/internal/logging"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Service  LogService
	Config   *config.AppConfig
	Logger   *zap.Logger
	Version  string
	Gatherer prometheus.Gatherer // nil disables /metrics
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Log    LogHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	limits := Limits{
		MaxLength: deps.Config.Storage.MaxLength,
		MaxLines:  deps.Config.Storage.MaxLines,
		Retention: deps.Config.Storage.Retention,
	}
	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Log:    NewLogHandler(deps.Service, limits, deps.Config.Server.BaseURL, deps.Config.Server.APIBaseURL),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)

	v1 := e.Group("/1")
	v1.POST("/log", handlers.Log.HandleCreateLog)
	v1.GET("/raw/:id", handlers.Log.HandleGetRaw)
	v1.HEAD("/raw/:id", handlers.Log.HandleGetRaw)
	v1.GET("/insights/:id", handlers.Log.HandleGetInsights)
	v1.GET("/analysis/:id", handlers.Log.HandleGetAnalysis)
	v1.DELETE("/delete/:id", handlers.Log.HandleDeleteLog)
	v1.GET("/limits", handlers.Log.HandleGetLimits)
}

// RegisterMetrics exposes the gatherer in the prometheus text format.
func RegisterMetrics(e *echo.Echo, path string, g prometheus.Gatherer) {
	e.GET(path, echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// NewServer builds the echo instance with middleware and routes.
func NewServer(deps *Dependencies) *echo.Echo {
	logger := logging.OrNop(deps.Logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	SetupMiddleware(e, deps.Config, logger)
	RegisterRoutes(e, NewHandlers(deps))
	if deps.Gatherer != nil && deps.Config.Metrics.Enabled {
		RegisterMetrics(e, deps.Config.Metrics.Path, deps.Gatherer)
	}
	return e
}
