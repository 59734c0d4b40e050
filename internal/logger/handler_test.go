package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titledoctor/internal/logger"
	"titledoctor/internal/middleware"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := middleware.WithCorrelationID(context.Background(), "abc-123")
	log.InfoContext(ctx, "something happened", "job_id", "job_1")

	entry := logLine(t, &buf)
	assert.Equal(t, "abc-123", entry["correlation_id"])
	assert.Equal(t, "something happened", entry["msg"])
	assert.Equal(t, "job_1", entry["job_id"])
}

func TestContextHandler_NoCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	log.InfoContext(context.Background(), "plain record")

	entry := logLine(t, &buf)
	_, present := entry["correlation_id"]
	assert.False(t, present)
}
