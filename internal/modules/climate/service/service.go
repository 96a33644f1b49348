package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"climate-api/internal/modules/climate/aggregate"
	"climate-api/internal/modules/climate/types"
)

var (
	// ErrInvalidArgument marks caller input that cannot be interpreted,
	// such as a malformed date.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable marks a failure to read from a store.
	ErrUnavailable = errors.New("store unavailable")
)

// MeasurementStore returns the complete measurement table.
type MeasurementStore interface {
	FetchAll(ctx context.Context) ([]types.MeasurementRecord, error)
}

// StationDirectory returns the complete station table.
type StationDirectory interface {
	FetchAll(ctx context.Context) ([]types.StationRecord, error)
}

// Service answers the climate queries. It keeps no state between calls:
// every call reads the stores afresh.
type Service struct {
	measurements MeasurementStore
	stations     StationDirectory
	logger       *slog.Logger
}

func NewService(measurements MeasurementStore, stations StationDirectory, logger *slog.Logger) *Service {
	if measurements == nil || stations == nil {
		panic("service: nil store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{measurements: measurements, stations: stations, logger: logger}
}

func (s *Service) GetPrecipitation(ctx context.Context) ([]types.PrecipitationEntry, error) {
	records, err := s.fetchMeasurements(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.ListPrecipitation(records), nil
}

func (s *Service) GetStations(ctx context.Context) ([]types.StationEntry, error) {
	stations, err := s.stations.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch stations: %w", ErrUnavailable, err)
	}
	return aggregate.ListStations(stations), nil
}

// GetRecentTemperatures returns the most active station's observations over
// the trailing window that ends at the latest date in the dataset.
func (s *Service) GetRecentTemperatures(ctx context.Context) ([]types.TemperatureEntry, error) {
	records, err := s.fetchMeasurements(ctx)
	if err != nil {
		return nil, err
	}

	latest, ok := aggregate.LatestDate(records)
	if !ok {
		return []types.TemperatureEntry{}, nil
	}
	stationID, ok := aggregate.MostActiveStation(records)
	if !ok {
		return []types.TemperatureEntry{}, nil
	}
	window := aggregate.TrailingWindow(latest, aggregate.DefaultWindowDays)

	s.logger.Debug("recent temperatures",
		"station", stationID,
		"from", window.Start.String(),
		"to", latest.String(),
	)
	return aggregate.TemperatureSeriesForStation(records, stationID, window), nil
}

// GetTemperatureSummary reduces every observation dated on or after start
// and, unless end is empty, on or before end. Both dates are YYYY-MM-DD.
func (s *Service) GetTemperatureSummary(ctx context.Context, start, end string) (types.TemperatureSummary, error) {
	r, err := parseRange(start, end)
	if err != nil {
		return types.TemperatureSummary{}, err
	}
	records, err := s.fetchMeasurements(ctx)
	if err != nil {
		return types.TemperatureSummary{}, err
	}
	return aggregate.SummarizeTemperature(records, r), nil
}

func (s *Service) fetchMeasurements(ctx context.Context) ([]types.MeasurementRecord, error) {
	records, err := s.measurements.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch measurements: %w", ErrUnavailable, err)
	}
	return records, nil
}

func parseRange(start, end string) (types.DateRange, error) {
	from, err := types.ParseDate(start)
	if err != nil {
		return types.DateRange{}, fmt.Errorf("%w: start: %w", ErrInvalidArgument, err)
	}
	r := types.DateRange{Start: from}
	if end == "" {
		return r, nil
	}
	to, err := types.ParseDate(end)
	if err != nil {
		return types.DateRange{}, fmt.Errorf("%w: end: %w", ErrInvalidArgument, err)
	}
	r.End = &to
	return r, nil
}
