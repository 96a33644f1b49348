package types

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. The zero value is not a
// valid date; use ParseDate or DateOf.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// AddDays returns d shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MeasurementRecord is one row of the measurement table.
type MeasurementRecord struct {
	StationID              string
	Date                   Date
	Precipitation          *float64
	TemperatureObservation *float64
}

// StationRecord is one row of the station table.
type StationRecord struct {
	StationID string
	Name      string
	Latitude  *float64
	Longitude *float64
	Elevation *float64
}

// DateRange is inclusive on both ends. A nil End means no upper bound.
type DateRange struct {
	Start Date
	End   *Date
}

func (r DateRange) Contains(d Date) bool {
	if d.Before(r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

type PrecipitationEntry struct {
	Date          Date     `json:"Date"`
	Precipitation *float64 `json:"Precipitation"`
}

type StationEntry struct {
	StationID string `json:"Station ID"`
	Name      string `json:"Station Name"`
}

type TemperatureEntry struct {
	StationID   string  `json:"Station ID"`
	Date        Date    `json:"-"`
	Temperature float64 `json:"Temperature"`
}

// TemperatureSummary reduces the temperature observations of a date range.
// Count is the number of observations it was computed from; when it is zero
// the summary is empty and Min, Avg and Max carry no meaning.
type TemperatureSummary struct {
	Min   float64 `json:"Min Temp"`
	Avg   float64 `json:"Avg Temp"`
	Max   float64 `json:"Max Temp"`
	Count int     `json:"-"`
}

func (s TemperatureSummary) Empty() bool {
	return s.Count == 0
}
