package importer

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/testutil"
)

const stationsCSV = `id,station,name,latitude,longitude,elevation
1,USC00519397,"WAIKIKI 717.2, HI US",21.2716,-157.8168,3.0
2,USC00513117,"KANEOHE 838.1, HI US",21.4234,-157.8015,
`

const measurementsCSV = `station,date,prcp,tobs
USC00519397,2010-01-01,0.08,65
USC00519397,2010-01-02,,63
USC00513117,2010-01-03,0.0,
`

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestImport(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	res, err := Import(ctx, db, strings.NewReader(stationsCSV), strings.NewReader(measurementsCSV))
	require.NoError(t, err)
	assert.Equal(t, Result{Stations: 2, Measurements: 3}, res)

	stations, err := repository.NewStationRepository(db).FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "WAIKIKI 717.2, HI US", stations[0].Name)
	require.NotNil(t, stations[0].Elevation)
	assert.Equal(t, 3.0, *stations[0].Elevation)
	assert.Nil(t, stations[1].Elevation)

	measurements, err := repository.NewMeasurementRepository(db).FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, measurements, 3)
	assert.Equal(t, "2010-01-01", measurements[0].Date.String())
	assert.Nil(t, measurements[1].Precipitation)
	require.NotNil(t, measurements[1].TemperatureObservation)
	assert.Equal(t, 63.0, *measurements[1].TemperatureObservation)
	require.NotNil(t, measurements[2].Precipitation)
	assert.Equal(t, 0.0, *measurements[2].Precipitation)
	assert.Nil(t, measurements[2].TemperatureObservation)
}

func TestImport_nilReaderSkipsTable(t *testing.T) {
	db := testutil.NewDB(t)

	res, err := Import(context.Background(), db, strings.NewReader(stationsCSV), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stations)
	assert.Equal(t, 0, count(t, db, "measurement"))
}

func TestImport_rejectsAndRollsBack(t *testing.T) {
	tests := []struct {
		name         string
		measurements string
		wantErr      string
	}{
		{
			name:         "bad date",
			measurements: "station,date,prcp,tobs\nUSC1,2010-01-01,0,60\nUSC1,01/02/2010,0,61\n",
			wantErr:      "line 3",
		},
		{
			name:         "bad number",
			measurements: "station,date,prcp,tobs\nUSC1,2010-01-01,abc,60\n",
			wantErr:      "prcp",
		},
		{
			name:         "missing column",
			measurements: "station,date,prcp\nUSC1,2010-01-01,0\n",
			wantErr:      `missing column "tobs"`,
		},
		{
			name:         "empty file",
			measurements: "",
			wantErr:      "missing header",
		},
		{
			name:         "empty station",
			measurements: "station,date,prcp,tobs\n,2010-01-01,0,60\n",
			wantErr:      "empty station id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)

			_, err := Import(context.Background(), db, strings.NewReader(stationsCSV), strings.NewReader(tt.measurements))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 0, count(t, db, "station"), "stations must roll back")
			assert.Equal(t, 0, count(t, db, "measurement"))
		})
	}
}

func Test_columnIndex(t *testing.T) {
	index, err := columnIndex([]string{" Tobs", "date", "id", "STATION", "prcp"}, measurementColumns)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 4, 0}, index)
}
