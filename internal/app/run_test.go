package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-api/internal/config"
	"climate-api/internal/migrate"
	"climate-api/internal/testutil"
)

func datasetFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = migrate.Run(context.Background(), db)
	require.NoError(t, err)
	stations, measurements := testutil.HawaiiSample()
	testutil.Seed(t, db, stations, measurements)
	require.NoError(t, db.Close())
	return path
}

func testConfig(path string) config.Config {
	return config.Config{
		AppEnv:         "dev",
		LogLevel:       slog.LevelInfo,
		Driver:         "sqlite3",
		Path:           path,
		ReadOnly:       true,
		MaxOpenConns:   4,
		MaxIdleConns:   4,
		OpenAttempts:   1,
		OpenRetryDelay: time.Millisecond,
	}
}

func TestServe(t *testing.T) {
	cfg := testConfig(datasetFile(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.HTTPAddr = ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), ln) }()

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + cfg.HTTPAddr

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = client.Get(base + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	resp, err = client.Get(base + "/api/v1.0/stations")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var stations []map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stations))
	assert.Len(t, stations, 3)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "serve returned %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServe_missingDataset(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.sqlite"))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = serve(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), ln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping")
}

func TestRun_badAddr(t *testing.T) {
	cfg := testConfig("unused")
	cfg.HTTPAddr = "not-an-addr"

	err := Run(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
