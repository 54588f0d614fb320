package climate

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"surfup-server/internal/modules/climate/controller"
	"surfup-server/internal/modules/climate/repository"
	"surfup-server/internal/modules/climate/service"
)

func RegisterFeature(r chi.Router, db *sql.DB) {
	climateRepository := repository.NewRepository(db)
	climateService := service.NewService(climateRepository)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(r)
}
