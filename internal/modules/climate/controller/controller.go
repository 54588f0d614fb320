package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"surfup-server/internal/modules/climate/types"
)

const (
	apiPrefix = "/api/v1.0"
	apiTitle  = "Hawaii Climate API"
)

// ClimateService is the query surface the handlers need.
type ClimateService interface {
	Precipitation(ctx context.Context) (map[string]*float64, error)
	Stations(ctx context.Context) ([]string, error)
	MostActiveTemperatures(ctx context.Context) ([]map[string]*float64, error)
	TemperatureStats(ctx context.Context, dr types.DateRange) (types.TemperatureStats, error)
}

type ClimateController interface {
	RegisterRoutes(r chi.Router)
}

type climateControllerImpl struct {
	service ClimateService
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{service: service}
}

// route is one entry of the API table. Listing is the form shown on the
// welcome page.
type route struct {
	pattern string
	listing string
	handler http.HandlerFunc
}

// routes is ordered: static segments before the {start} catch-all.
func (c *climateControllerImpl) routes() []route {
	return []route{
		{pattern: "/precipitation", listing: apiPrefix + "/precipitation", handler: c.handlePrecipitation},
		{pattern: "/stations", listing: apiPrefix + "/stations", handler: c.handleStations},
		{pattern: "/tobs", listing: apiPrefix + "/tobs", handler: c.handleTobs},
		{pattern: "/{start}", listing: apiPrefix + "/<start>", handler: c.handleTemperatureStats},
		{pattern: "/{start}/{end}", listing: apiPrefix + "/<start>/<end>", handler: c.handleTemperatureStats},
	}
}

func (c *climateControllerImpl) RegisterRoutes(r chi.Router) {
	table := c.routes()
	r.Get("/", c.handleWelcome(table))
	r.Route(apiPrefix, func(r chi.Router) {
		for _, rt := range table {
			r.Get(rt.pattern, rt.handler)
		}
	})
}
