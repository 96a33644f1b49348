// Package importer loads the Hawaii station and measurement CSV exports into
// a database that already carries the dataset schema.
package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"climate-api/internal/modules/climate/types"
)

var (
	stationColumns     = []string{"station", "name", "latitude", "longitude", "elevation"}
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
)

const (
	insertStationSQL     = `INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`
	insertMeasurementSQL = `INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`
)

// Result counts the rows written.
type Result struct {
	Stations     int
	Measurements int
}

// Import reads both CSV files and inserts every row in a single transaction.
// Either input may be nil to skip that table. Empty numeric cells are stored
// as NULL. Nothing is written if any row is rejected.
func Import(ctx context.Context, db *sql.DB, stations, measurements io.Reader) (Result, error) {
	var res Result

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if stations != nil {
		n, err := importCSV(ctx, tx, stations, stationColumns, insertStationSQL, stationArgs)
		if err != nil {
			return Result{}, fmt.Errorf("stations: %w", err)
		}
		res.Stations = n
	}
	if measurements != nil {
		n, err := importCSV(ctx, tx, measurements, measurementColumns, insertMeasurementSQL, measurementArgs)
		if err != nil {
			return Result{}, fmt.Errorf("measurements: %w", err)
		}
		res.Measurements = n
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// rowArgs turns one CSV record, already reordered to the expected columns,
// into insert arguments.
type rowArgs func(fields []string) ([]any, error)

func importCSV(ctx context.Context, tx *sql.Tx, r io.Reader, columns []string, insertSQL string, toArgs rowArgs) (int, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("missing header")
		}
		return 0, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header, columns)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	fields := make([]string, len(columns))
	n := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read: %w", err)
		}
		line, _ := cr.FieldPos(0)
		for i, at := range index {
			fields[i] = strings.TrimSpace(record[at])
		}
		args, err := toArgs(fields)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("line %d: insert: %w", line, err)
		}
		n++
	}
	return n, nil
}

// columnIndex maps each wanted column to its position in header. Extra
// columns (such as a leading id) are ignored.
func columnIndex(header, want []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	index := make([]int, len(want))
	for i, col := range want {
		at, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		index[i] = at
	}
	return index, nil
}

func stationArgs(f []string) ([]any, error) {
	if f[0] == "" {
		return nil, errors.New("empty station id")
	}
	lat, err := nullableFloat(f[2])
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lng, err := nullableFloat(f[3])
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	elevation, err := nullableFloat(f[4])
	if err != nil {
		return nil, fmt.Errorf("elevation: %w", err)
	}
	return []any{f[0], f[1], lat, lng, elevation}, nil
}

func measurementArgs(f []string) ([]any, error) {
	if f[0] == "" {
		return nil, errors.New("empty station id")
	}
	d, err := types.ParseDate(f[1])
	if err != nil {
		return nil, err
	}
	prcp, err := nullableFloat(f[2])
	if err != nil {
		return nil, fmt.Errorf("prcp: %w", err)
	}
	tobs, err := nullableFloat(f[3])
	if err != nil {
		return nil, fmt.Errorf("tobs: %w", err)
	}
	return []any{f[0], d.String(), prcp, tobs}, nil
}

func nullableFloat(s string) (sql.NullFloat64, error) {
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}
