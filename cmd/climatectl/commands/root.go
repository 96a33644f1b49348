package commands

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/logging"
)

const appName = "climatectl"

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	DBPath  string
	Verbose bool

	logger *slog.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Provision the Hawaii climate dataset",
		Long: `Create and load the SQLite file served by climate-api.

The server only reads the dataset; use this tool to build it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.DBPath == "" {
				return errors.New("--db is required")
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.logger = logging.NewWriter(cmd.ErrOrStderr(), config.Config{AppEnv: "dev", LogLevel: level}, "dev", appName)
			slog.SetDefault(opts.logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite dataset file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every SQL statement")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// openWritable opens the dataset file for writing, creating it if needed.
func openWritable(ctx context.Context, opts *RootOptions) (*sql.DB, error) {
	return db.Open(ctx, config.Config{
		Driver:         "sqlite3",
		Path:           opts.DBPath,
		ReadOnly:       false,
		LogSQL:         opts.Verbose,
		MaxOpenConns:   1,
		MaxIdleConns:   1,
		OpenAttempts:   1,
		OpenRetryDelay: time.Millisecond,
	})
}
