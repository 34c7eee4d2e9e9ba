package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-k", "mysql"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "config:")
}

func TestRun_StartupFailureIsLogged(t *testing.T) {
	t.Setenv("LOG_BACKEND", "zap")
	dsn := filepath.Join(t.TempDir(), "missing", "app.db")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-k", "sqlite", "-d", dsn, "-s", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "startup failed")
}
