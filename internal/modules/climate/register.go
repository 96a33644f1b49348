package climate

import (
	"database/sql"
	"log/slog"
	"net/http"

	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, logger *slog.Logger) {
	measurements := repository.NewMeasurementRepository(db)
	stations := repository.NewStationRepository(db)
	climateService := service.NewService(measurements, stations, logger)
	climateController := controller.NewClimateController(climateService, logger)
	climateController.RegisterRoutes(mux)
}
