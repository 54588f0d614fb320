package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"surfup-server/internal/modules/climate/types"
	"surfup-server/internal/modules/climate/views"
	"surfup-server/internal/respond"
)

func (c *climateControllerImpl) handleWelcome(table []route) http.HandlerFunc {
	listing := make([]string, 0, len(table))
	for _, rt := range table {
		listing = append(listing, rt.listing)
	}
	data := views.WelcomeData{Title: apiTitle, Routes: listing}

	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := views.RenderWelcome(&buf, data); err != nil {
			slog.Error("welcome template render failed", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to render page")
			return
		}
		respond.HTML(w, http.StatusOK, buf.Bytes())
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	byDate, err := c.service.Precipitation(r.Context())
	if err != nil {
		slog.Error("precipitation query failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	respond.JSON(w, http.StatusOK, byDate)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	ids, err := c.service.Stations(r.Context())
	if err != nil {
		slog.Error("stations query failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	respond.JSON(w, http.StatusOK, ids)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	series, err := c.service.MostActiveTemperatures(r.Context())
	if err != nil {
		slog.Error("tobs query failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	respond.JSON(w, http.StatusOK, series)
}

// handleTemperatureStats serves both /{start} and /{start}/{end}. The path
// values are used verbatim as string bounds.
func (c *climateControllerImpl) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	dr := types.DateRange{
		From: chi.URLParam(r, "start"),
		To:   chi.URLParam(r, "end"),
	}
	stats, err := c.service.TemperatureStats(r.Context(), dr)
	if err != nil {
		slog.Error("temperature stats query failed", "start", dr.From, "end", dr.To, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
