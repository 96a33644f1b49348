// Package aggregate turns raw measurement and station records into the
// series and summaries served by the climate API. Every function is pure:
// it reads only the slice it is given and never reorders it in place.
package aggregate

import (
	"sort"

	"climate-api/internal/modules/climate/types"
)

// DefaultWindowDays is the length of the trailing window used for the
// most-active-station temperature series.
const DefaultWindowDays = 365

func ListPrecipitation(records []types.MeasurementRecord) []types.PrecipitationEntry {
	out := make([]types.PrecipitationEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, types.PrecipitationEntry{
			Date:          rec.Date,
			Precipitation: rec.Precipitation,
		})
	}
	return out
}

func ListStations(stations []types.StationRecord) []types.StationEntry {
	out := make([]types.StationEntry, 0, len(stations))
	for _, s := range stations {
		out = append(out, types.StationEntry{StationID: s.StationID, Name: s.Name})
	}
	return out
}

// MostActiveStation returns the station with the most temperature
// observations. On a tie the station that first reached the winning count,
// in input order, wins. ok is false when no record carries an observation.
func MostActiveStation(records []types.MeasurementRecord) (stationID string, ok bool) {
	counts := make(map[string]int)
	best := 0
	for _, rec := range records {
		if rec.TemperatureObservation == nil {
			continue
		}
		counts[rec.StationID]++
		// strictly greater: a later station has to overtake, not equal
		if n := counts[rec.StationID]; n > best {
			best = n
			stationID = rec.StationID
		}
	}
	return stationID, best > 0
}

// LatestDate returns the maximum date present in records.
func LatestDate(records []types.MeasurementRecord) (types.Date, bool) {
	if len(records) == 0 {
		return types.Date{}, false
	}
	latest := records[0].Date
	for _, rec := range records[1:] {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	return latest, true
}

func TrailingWindow(latest types.Date, days int) types.DateRange {
	end := latest
	return types.DateRange{Start: latest.AddDays(-days), End: &end}
}

// TemperatureSeriesForStation returns the station's observations inside
// window, oldest first. Records without an observation are skipped.
func TemperatureSeriesForStation(records []types.MeasurementRecord, stationID string, window types.DateRange) []types.TemperatureEntry {
	out := make([]types.TemperatureEntry, 0)
	for _, rec := range records {
		if rec.StationID != stationID || rec.TemperatureObservation == nil {
			continue
		}
		if !window.Contains(rec.Date) {
			continue
		}
		out = append(out, types.TemperatureEntry{
			StationID:   rec.StationID,
			Date:        rec.Date,
			Temperature: *rec.TemperatureObservation,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SummarizeTemperature computes min, mean and max of every observation, from
// any station, dated inside r. The result is empty (Count == 0) when nothing
// qualifies.
func SummarizeTemperature(records []types.MeasurementRecord, r types.DateRange) types.TemperatureSummary {
	var sum types.TemperatureSummary
	var total float64
	for _, rec := range records {
		if rec.TemperatureObservation == nil || !r.Contains(rec.Date) {
			continue
		}
		v := *rec.TemperatureObservation
		if sum.Count == 0 || v < sum.Min {
			sum.Min = v
		}
		if sum.Count == 0 || v > sum.Max {
			sum.Max = v
		}
		total += v
		sum.Count++
	}
	if sum.Count > 0 {
		sum.Avg = total / float64(sum.Count)
	}
	return sum
}
