package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/httpapi"
	"climate-api/internal/modules/climate"
	climateviews "climate-api/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

// Run serves the climate API until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	return serve(ctx, cfg, logger, ln)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger, ln net.Listener) error {
	defer ln.Close()

	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbReadOnly", cfg.ReadOnly,
		"dbLogSQL", cfg.LogSQL,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
	)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	var ok int
	if err := dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	logger.Info("database connection successful")

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}
	mux := httpapi.NewMux(dbConn)
	climate.RegisterFeature(mux, dbConn, logger)

	srv := httpapi.NewServer(cfg, httpapi.WithRequestLogging(mux, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
