// Package testutil builds small in-memory climate datasets for tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"climate-api/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

// Station is a station row to seed.
type Station struct {
	ID        string
	Name      string
	Latitude  *float64
	Longitude *float64
	Elevation *float64
}

// Measurement is a measurement row to seed. Nil pointers are stored as NULL.
type Measurement struct {
	Station string
	Date    string
	Prcp    *float64
	Tobs    *float64
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// NewDB opens an in-memory SQLite database with the dataset schema applied.
// The pool is capped at one connection because every new :memory:
// connection would otherwise see an empty database.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if _, err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Seed inserts stations and measurements in the given order, so row ids
// follow slice order.
func Seed(t *testing.T, db *sql.DB, stations []Station, measurements []Measurement) {
	t.Helper()
	for _, s := range stations {
		_, err := db.Exec(
			`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Latitude, s.Longitude, s.Elevation,
		)
		if err != nil {
			t.Fatalf("insert station %s: %v", s.ID, err)
		}
	}
	for _, m := range measurements {
		_, err := db.Exec(
			`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
			m.Station, m.Date, m.Prcp, m.Tobs,
		)
		if err != nil {
			t.Fatalf("insert measurement %s %s: %v", m.Station, m.Date, err)
		}
	}
}

// HawaiiSample is a trimmed slice of the Hawaii dataset: three stations,
// USC00519281 the most active, latest date 2017-08-23.
func HawaiiSample() ([]Station, []Measurement) {
	stations := []Station{
		{ID: "USC00519397", Name: "WAIKIKI 717.2, HI US", Latitude: Float(21.2716), Longitude: Float(-157.8168), Elevation: Float(3)},
		{ID: "USC00513117", Name: "KANEOHE 838.1, HI US", Latitude: Float(21.4234), Longitude: Float(-157.8015), Elevation: Float(14.6)},
		{ID: "USC00519281", Name: "WAIHEE 837.5, HI US", Latitude: Float(21.45167), Longitude: Float(-157.84889), Elevation: Float(32.9)},
	}
	measurements := []Measurement{
		{Station: "USC00519397", Date: "2010-01-01", Prcp: Float(0.08), Tobs: Float(65)},
		{Station: "USC00519281", Date: "2016-08-22", Prcp: Float(0.4), Tobs: Float(77)},
		{Station: "USC00519281", Date: "2016-08-23", Prcp: Float(1.79), Tobs: Float(77)},
		{Station: "USC00513117", Date: "2016-08-23", Prcp: Float(0.15), Tobs: Float(76)},
		{Station: "USC00519397", Date: "2017-01-01", Prcp: Float(0), Tobs: Float(62)},
		{Station: "USC00519281", Date: "2017-01-01", Prcp: nil, Tobs: Float(72)},
		{Station: "USC00513117", Date: "2017-01-01", Prcp: Float(0.03), Tobs: nil},
		{Station: "USC00519281", Date: "2017-08-18", Prcp: Float(0.06), Tobs: Float(79)},
		{Station: "USC00519397", Date: "2017-08-23", Prcp: Float(0), Tobs: Float(81)},
		{Station: "USC00519281", Date: "2017-08-23", Prcp: Float(0.45), Tobs: Float(76)},
	}
	return stations, measurements
}
