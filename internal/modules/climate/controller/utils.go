package controller

import (
	"errors"
	"net/http"

	"climate-api/internal/modules/climate/service"
	"climate-api/internal/modules/climate/types"
)

const apiPrefix = "/api/v1.0"

// routes lists what the index page advertises, in display order.
var routes = []struct {
	Path        string
	Description string
}{
	{apiPrefix + "/precipitation", "Precipitation by date"},
	{apiPrefix + "/stations", "Station list"},
	{apiPrefix + "/tobs", "Temperature observations of the most active station over the last year of data"},
	{apiPrefix + "/{start}", "Min, average and max temperature from start (YYYY-MM-DD)"},
	{apiPrefix + "/{start}/{end}", "Min, average and max temperature from start to end, inclusive"},
}

// statusFor maps a service error to the response status and the message
// safe to show the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "data store unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// summaryBody renders a summary as a one-element list, or an empty list when
// no observation matched.
func summaryBody(s types.TemperatureSummary) []types.TemperatureSummary {
	if s.Empty() {
		return []types.TemperatureSummary{}
	}
	return []types.TemperatureSummary{s}
}
