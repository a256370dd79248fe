// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/logshare/backend/internal/models"
)

// LogService is the part of service.LogService the handlers depend on.
type LogService interface {
	Submit(ctx context.Context, body []byte) (*models.LogRecord, error)
	FetchRaw(ctx context.Context, id string) ([]byte, error)
	FetchAnalyzed(ctx context.Context, id string) (*models.AnalyzedLog, error)
	Summarize(ctx context.Context, id string) (string, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// LogHandler handles the ingestion, retrieval and deletion surfaces
type LogHandler interface {
	HandleCreateLog(c echo.Context) error
	HandleGetRaw(c echo.Context) error
	HandleGetInsights(c echo.Context) error
	HandleGetAnalysis(c echo.Context) error
	HandleDeleteLog(c echo.Context) error
	HandleGetLimits(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
