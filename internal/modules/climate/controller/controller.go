package controller

import (
	"context"
	"log/slog"
	"net/http"

	"climate-api/internal/modules/climate/types"
)

// ClimateService is the query surface the handlers call.
type ClimateService interface {
	GetPrecipitation(ctx context.Context) ([]types.PrecipitationEntry, error)
	GetStations(ctx context.Context) ([]types.StationEntry, error)
	GetRecentTemperatures(ctx context.Context) ([]types.TemperatureEntry, error)
	GetTemperatureSummary(ctx context.Context, start, end string) (types.TemperatureSummary, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service ClimateService
	logger  *slog.Logger
}

func NewClimateController(service ClimateService, logger *slog.Logger) ClimateController {
	if logger == nil {
		logger = slog.Default()
	}
	return &climateControllerImpl{service: service, logger: logger}
}

// RegisterRoutes mounts the index page and the /api/v1.0 routes. The literal
// routes take precedence over the {start} wildcard.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET "+apiPrefix+"/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET "+apiPrefix+"/stations", c.handleStations)
	mux.HandleFunc("GET "+apiPrefix+"/tobs", c.handleTobs)
	mux.HandleFunc("GET "+apiPrefix+"/{start}", c.handleSummary)
	mux.HandleFunc("GET "+apiPrefix+"/{start}/{end}", c.handleSummary)
}
