package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Driver          string
	DSN             string
	Path            string
	ReadOnly        bool
	LogSQL          bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// OpenAttempts and OpenRetryDelay bound how long startup waits for the
	// store to become reachable.
	OpenAttempts   int
	OpenRetryDelay time.Duration
}

// fileConfig mirrors the optional YAML file named by CONFIG_FILE. Every
// field is a string so that file values go through the same parsing and
// validation as environment values.
type fileConfig struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`
	DB       struct {
		Driver          string `yaml:"driver"`
		DSN             string `yaml:"dsn"`
		Path            string `yaml:"sqlite_path"`
		ReadOnly        string `yaml:"read_only"`
		LogSQL          string `yaml:"log_sql"`
		MaxOpenConns    string `yaml:"max_open_conns"`
		MaxIdleConns    string `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		OpenAttempts    string `yaml:"open_attempts"`
		OpenRetryDelay  string `yaml:"open_retry_delay"`
	} `yaml:"db"`
}

func LoadFromEnv() (Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &file); err != nil {
			return Config{}, fmt.Errorf("parse CONFIG_FILE %q: %w", path, err)
		}
	}

	appEnv := lookup("APP_ENV", file.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(lookup("LOG_LEVEL", file.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	httpAddr := lookup("HTTP_ADDR", file.HTTPAddr, ":8080")

	driver := lookup("DB_DRIVER", file.DB.Driver, "sqlite3")
	dsn := lookup("DB_DSN", file.DB.DSN, "")
	switch driver {
	case "sqlite3":
	case "mysql":
		if dsn == "" {
			return Config{}, fmt.Errorf("DB_DSN is required when DB_DRIVER is %q", driver)
		}
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, mysql)", driver)
	}
	path := lookup("SQLITE_PATH", file.DB.Path, "Resources/hawaii.sqlite")

	readOnly, err := parseBool("DB_READ_ONLY", lookup("DB_READ_ONLY", file.DB.ReadOnly, "true"))
	if err != nil {
		return Config{}, err
	}
	logSQL, err := parseBool("DB_LOG_SQL", lookup("DB_LOG_SQL", file.DB.LogSQL, "false"))
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := parseInt("DB_MAX_OPEN_CONNS", lookup("DB_MAX_OPEN_CONNS", file.DB.MaxOpenConns, "4"))
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := parseInt("DB_MAX_IDLE_CONNS", lookup("DB_MAX_IDLE_CONNS", file.DB.MaxIdleConns, "4"))
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := parseDuration("DB_CONN_MAX_LIFETIME", lookup("DB_CONN_MAX_LIFETIME", file.DB.ConnMaxLifetime, "0s"))
	if err != nil {
		return Config{}, err
	}

	openAttempts, err := parseInt("DB_OPEN_ATTEMPTS", lookup("DB_OPEN_ATTEMPTS", file.DB.OpenAttempts, "3"))
	if err != nil {
		return Config{}, err
	}
	if openAttempts < 1 {
		return Config{}, fmt.Errorf("invalid DB_OPEN_ATTEMPTS %d: must be >= 1", openAttempts)
	}
	openRetryDelay, err := parseDuration("DB_OPEN_RETRY_DELAY", lookup("DB_OPEN_RETRY_DELAY", file.DB.OpenRetryDelay, "500ms"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        httpAddr,
		Driver:          driver,
		DSN:             dsn,
		Path:            path,
		ReadOnly:        readOnly,
		LogSQL:          logSQL,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		OpenAttempts:    openAttempts,
		OpenRetryDelay:  openRetryDelay,
	}, nil
}

// lookup returns the trimmed environment value, else the file value, else def.
func lookup(key, fromFile, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fromFile); v != "" {
		return v
	}
	return def
}

func parseInt(key, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseBool(key, s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
