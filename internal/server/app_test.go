package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	static := filepath.Join(dir, "gifs")
	require.NoError(t, os.Mkdir(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "dance.gif"), []byte("GIF89a-dance"), 0o644))

	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = filepath.Join(dir, "app.db")
	c.StaticDir = static
	c.ShutdownTimeout = 2 * time.Second
	require.NoError(t, c.Validate())
	return c
}

func newTestApp(t *testing.T, c *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func getJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestApp_EndToEnd(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/count?gif_name=dance.gif")
	require.NoError(t, err)
	assert.Equal(t, float64(0), getJSON(t, resp)["count"])

	for i := 1; i <= 3; i++ {
		resp, err = http.Post(ts.URL+"/api/update", "application/json", strings.NewReader(`{"gif_name":"dance.gif"}`))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(i), getJSON(t, resp)["count"])
	}

	resp, err = http.Get(ts.URL + "/api/count?gif_name=dance.gif")
	require.NoError(t, err)
	assert.Equal(t, float64(3), getJSON(t, resp)["count"])

	resp, err = http.Get(ts.URL + "/api/deliver?gif_name=dance.gif")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GIF89a-dance", string(body))
	assert.Equal(t, `attachment; filename="dance.gif"`, resp.Header.Get("Content-Disposition"))

	resp, err = http.Get(ts.URL + "/api/deliver?gif_name=missing.gif")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/log", "text/plain",
		strings.NewReader(`{"visitor_id":"v1","page":"/","gif_name":"dance.gif"}`))
	require.NoError(t, err)
	assert.Equal(t, "Log recorded", getJSON(t, resp)["message"])

	resp, err = http.Post(ts.URL+"/api/log", "application/json",
		strings.NewReader(`{"excludeTester":true,"gif_name":"a/b.gif"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "testers are skipped before validation")
	assert.Equal(t, "Log recorded", getJSON(t, resp)["message"])

	resp, err = http.Post(ts.URL+"/api/log", "application/json", strings.NewReader(`null`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.background.Wait(ctx))

	var downloads, summaries, logs int
	require.NoError(t, app.db.QueryRow(`SELECT COUNT(*) FROM gif_downloads`).Scan(&downloads))
	require.NoError(t, app.db.QueryRow(`SELECT COUNT(*) FROM gif_download_summary`).Scan(&summaries))
	require.NoError(t, app.db.QueryRow(`SELECT COUNT(*) FROM visitor_logs`).Scan(&logs))
	assert.Equal(t, 2, downloads, "one from deliver, one from log")
	assert.Equal(t, 2, summaries)
	assert.Equal(t, 2, logs)

	var method string
	require.NoError(t, app.db.QueryRow(`SELECT method FROM gif_downloads WHERE visitor_id = 'anonymous'`).Scan(&method))
	assert.Equal(t, "static", method)
}

func TestApp_CountOnDeliver(t *testing.T) {
	c := testConfig(t)
	c.CountOnDeliver = true
	app := newTestApp(t, c)
	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/deliver?gif_name=dance.gif")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.background.Wait(ctx))

	var count int64
	require.NoError(t, app.db.QueryRow(`SELECT count FROM downloads WHERE gif_name = 'dance.gif'`).Scan(&count))
	assert.Equal(t, int64(1), count)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_BadDatabase(t *testing.T) {
	c := testConfig(t)
	c.DatabaseDriver = "mysql"

	app, err := NewApp(context.Background(), c, logging.Nop())
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestNewApp_FailureAfterOpenClosesDB(t *testing.T) {
	c := testConfig(t)
	c.GeoCacheBackend = config.GeoCacheRedis
	c.RedisURL = "not-a-redis-url"

	var opened *sql.DB
	orig := openDB
	openDB = func(ctx context.Context, driver, dsn string) (*sql.DB, error) {
		db, err := orig(ctx, driver, dsn)
		opened = db
		return db, err
	}
	t.Cleanup(func() { openDB = orig })

	app, err := NewApp(context.Background(), c, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis url")
	assert.Nil(t, app)

	require.NotNil(t, opened)
	assert.ErrorContains(t, opened.Ping(), "database is closed")
}
