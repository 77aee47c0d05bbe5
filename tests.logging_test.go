package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogFilePath(t *testing.T) {
	ts := time.Date(2023, 7, 2, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "books.20230702.130405.prod.log"), LogFilePath("logs", "prod", ts))
	assert.Equal(t, filepath.Join("logs", "books.20230702.130405.dev.log"), LogFilePath("logs", "dev", ts))
}

// TestLogWriter ensures a new file is created once the max size is reached.
func TestLogWriter(t *testing.T) {
	dir := t.TempDir()
	clock := NewMockClocker()
	rsw := NewLogWriter(&Config{LogFolder: dir, LogMaxSize: 1, IsProduction: true}, clock)
	defer rsw.Close()

	n, err := rsw.Write([]byte("first line\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	require.NoError(t, rsw.Sync())

	// a write over the max size is rejected.
	_, err = rsw.Write(make([]byte, 1048577))
	assert.Error(t, err)

	// filling the current file triggers a rotation.
	clock.MockNow = clock.MockNow.Add(time.Second)
	_, err = rsw.Write(make([]byte, 1048576))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSetupLogging(t *testing.T) {
	dir := t.TempDir()
	config := &Config{LogFolder: dir, LogMaxSize: 1, IsProduction: true, LogLevel: zapcore.InfoLevel, GitTag: "v1.0.0"}
	clock := NewMockClocker()
	rsw := NewLogWriter(config, clock)
	logger, flush := SetupLogging(config, rsw, clock)
	logger.Debug("hidden")
	logger.Info("visible", zap.Int("book.id", 1))
	require.NoError(t, flush())
	require.NoError(t, rsw.Close())

	data, err := os.ReadFile(LogFilePath(dir, "prod", clock.Now()))
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "\n"))
	assert.Contains(t, content, `"msg":"visible"`)
	assert.Contains(t, content, `"book.id":1`)
	assert.Contains(t, content, `"app.tag":"v1.0.0"`)
	assert.Contains(t, content, `"ts":"2023-07-02T00:00:00.000Z"`)
}

func TestGetLoggerFromContext(t *testing.T) {
	api, _ := newTestAPIHandler(nil, nil, nil)
	assert.Equal(t, api.logger, api.GetLoggerFromContext(context.Background()))
	scoped := zap.NewExample()
	ctx := context.WithValue(context.Background(), LoggerContextKey, scoped)
	assert.Equal(t, scoped, api.GetLoggerFromContext(ctx))
}
