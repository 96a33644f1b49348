package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"climate-api/internal/db"
	"climate-api/internal/importer"
	"climate-api/internal/migrate"
)

type importOptions struct {
	measurements string
	stations     string
}

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the station and measurement CSV exports",
		Long: `Apply the schema, then insert hawaii_stations.csv (station,name,latitude,longitude,elevation)
and hawaii_measurements.csv (station,date,prcp,tobs) in one transaction.
Empty cells are stored as NULL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.measurements, "measurements", "", "measurement CSV file")
	cmd.Flags().StringVar(&opts.stations, "stations", "", "station CSV file")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *importOptions) error {
	if opts.measurements == "" && opts.stations == "" {
		return errors.New("nothing to import: pass --measurements and/or --stations")
	}

	stations, closeStations, err := openOptional(opts.stations)
	if err != nil {
		return err
	}
	defer closeStations()
	measurements, closeMeasurements, err := openOptional(opts.measurements)
	if err != nil {
		return err
	}
	defer closeMeasurements()

	ctx := cmd.Context()
	conn, err := openWritable(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer db.Close(conn)

	if _, err := migrate.Run(ctx, conn); err != nil {
		return err
	}
	res, err := importer.Import(ctx, conn, stations, measurements)
	if err != nil {
		return err
	}

	rootOpts.logger.Info("import complete", "db", rootOpts.DBPath, "stations", res.Stations, "measurements", res.Measurements)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d stations, %d measurements\n", res.Stations, res.Measurements)
	return nil
}

// openOptional opens path, or returns a nil reader when path is empty.
func openOptional(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
