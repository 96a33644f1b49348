package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-sql-driver/mysql"

	"climate-api/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

const mysqlDialTimeout = 5 * time.Second

// Open returns a pooled handle to the dataset. Reaching the database is
// retried cfg.OpenAttempts times; a bad configuration fails immediately.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	var db *sql.DB
	err := retry.Do(
		func() error {
			conn, err := open(ctx, cfg)
			if err != nil {
				return err
			}
			db = conn
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(max(cfg.OpenAttempts, 1))),
		retry.Delay(cfg.OpenRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("db not reachable, retrying", "attempt", n+1, "driver", cfg.Driver, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	var db *sql.DB
	if cfg.LogSQL && cfg.Driver == "sqlite3" {
		connector, err := NewLoggingConnector(dsn, slog.Default())
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("db open: %w", err))
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func buildDSN(cfg config.Config) (string, error) {
	switch cfg.Driver {
	case "mysql":
		return buildMySQLDSN(cfg.DSN)
	case "sqlite3":
		return buildSQLiteDSN(cfg)
	default:
		return "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func buildMySQLDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("mysql: empty DSN")
	}
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql: parse DSN: %w", err)
	}
	if mc.Timeout == 0 {
		mc.Timeout = mysqlDialTimeout
	}
	return mc.FormatDSN(), nil
}

func buildSQLiteDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.Path
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
	}
	if cfg.ReadOnly {
		// the served dataset is never written; a missing file is an error
		params = append(params, "mode=ro")
	} else {
		dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		params = append(params, "_journal_mode=WAL")
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
