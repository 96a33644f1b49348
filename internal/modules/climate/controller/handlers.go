package controller

import (
	"bytes"
	"net/http"

	"climate-api/internal/modules/climate/views"
	"climate-api/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := views.IndexData{Routes: make([]views.Route, 0, len(routes))}
	for _, rt := range routes {
		data.Routes = append(data.Routes, views.Route{Path: rt.Path, Description: rt.Description})
	}
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, data); err != nil {
		c.logger.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.GetPrecipitation(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.GetStations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	entries, err := c.service.GetRecentTemperatures(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

// handleSummary serves both /{start} and /{start}/{end}; end is empty on the
// first.
func (c *climateControllerImpl) handleSummary(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	end := r.PathValue("end")

	summary, err := c.service.GetTemperatureSummary(r.Context(), start, end)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summaryBody(summary))
}

func (c *climateControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("climate query failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		c.logger.Debug("climate query rejected", "path", r.URL.Path, "error", err)
	}
	utils.WriteError(w, status, msg)
}
