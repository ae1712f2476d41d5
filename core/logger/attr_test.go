package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "0", g[0].Key)
	assert.Equal(t, "2", g[1].Key)

	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestEmptyIdentifiers(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
	assert.True(t, logger.AgentID("").Equal(slog.Attr{}))
	assert.True(t, logger.ClientIP("").Equal(slog.Attr{}))
	assert.True(t, logger.Query("").Equal(slog.Attr{}))
	assert.True(t, logger.Key("k", nil).Equal(slog.Attr{}))
}

func TestSimpleAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want any
	}{
		{"request id", logger.RequestID("req-1"), "request_id", "req-1"},
		{"agent id", logger.AgentID("bot-1a2b3c4d"), "agent_id", "bot-1a2b3c4d"},
		{"method", logger.Method("POST"), "method", "POST"},
		{"path", logger.Path("/api/v1/query"), "path", "/api/v1/query"},
		{"status", logger.StatusCode(429), "status_code", int64(429)},
		{"component", logger.Component("ratelimit"), "component", "ratelimit"},
		{"event", logger.Event("rejected"), "event", "rejected"},
		{"code", logger.Code("RATE_LIMITED"), "code", "RATE_LIMITED"},
		{"rate key", logger.RateKey("agent:abc:query"), "rate_key", "agent:abc:query"},
		{"provider", logger.Provider("voyage"), "provider", "voyage"},
		{"attempt", logger.Attempt(2), "attempt", int64(2)},
		{"bytes out", logger.BytesOut(512), "bytes_out", int64(512)},
		{"count", logger.Count("results", 3), "results", int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Any())
		})
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()
	attr := logger.Duration(150 * time.Millisecond)
	assert.Equal(t, "duration", attr.Key)
	assert.Equal(t, 150*time.Millisecond, attr.Value.Duration())
}
