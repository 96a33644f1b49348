package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"climate-api/internal/modules/climate/types"
)

//go:embed sql/get-measurements.sql
var getMeasurementsSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

// MeasurementRepository reads the measurement table.
type MeasurementRepository struct {
	db *sql.DB
}

func NewMeasurementRepository(db *sql.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

// FetchAll returns every measurement in table order. Each call checks out
// its own connection from the pool and returns it before FetchAll returns.
func (r *MeasurementRepository) FetchAll(ctx context.Context) ([]types.MeasurementRecord, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer closeConn(conn)

	rows, err := conn.QueryContext(ctx, getMeasurementsSQL)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close measurement rows", "error", err)
		}
	}()

	out := make([]types.MeasurementRecord, 0)
	for rows.Next() {
		var (
			rec  types.MeasurementRecord
			date string
			prcp sql.NullFloat64
			tobs sql.NullFloat64
		)
		if err := rows.Scan(&rec.StationID, &date, &prcp, &tobs); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		rec.Date, err = types.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("measurement %s: %w", rec.StationID, err)
		}
		rec.Precipitation = nullableFloat(prcp)
		rec.TemperatureObservation = nullableFloat(tobs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return out, nil
}

// StationRepository reads the station table.
type StationRepository struct {
	db *sql.DB
}

func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) FetchAll(ctx context.Context) ([]types.StationRecord, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer closeConn(conn)

	rows, err := conn.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close station rows", "error", err)
		}
	}()

	out := make([]types.StationRecord, 0)
	for rows.Next() {
		var (
			s                   types.StationRecord
			lat, lng, elevation sql.NullFloat64
		)
		if err := rows.Scan(&s.StationID, &s.Name, &lat, &lng, &elevation); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		s.Latitude = nullableFloat(lat)
		s.Longitude = nullableFloat(lng)
		s.Elevation = nullableFloat(elevation)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}
	return out, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeConn(conn *sql.Conn) {
	if err := conn.Close(); err != nil {
		slog.Error("release connection", "error", err)
	}
}
