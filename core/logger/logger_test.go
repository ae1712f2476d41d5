package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sharedcontext/core/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "api")),
		)

		log.Info("test message", logger.Component("test"))

		out := buf.String()
		assert.Contains(t, out, `"msg":"test message"`)
		assert.Contains(t, out, `"component":"test"`)
		assert.Contains(t, out, `"service":"api"`)
	})

	t.Run("level filters lower records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevelString("warn"))

		log.Info("hidden")
		log.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("context extractors add attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				id, ok := ctx.Value(ctxKey{}).(string)
				if !ok {
					return slog.Attr{}, false
				}
				return logger.RequestID(id), true
			}),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-42")
		log.With(logger.Component("x")).InfoContext(ctx, "with id")
		log.InfoContext(context.Background(), "without id")

		out := buf.String()
		assert.Contains(t, out, `"request_id":"req-42"`)
		assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("request_id")))
	})

	t.Run("production preset is json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithProduction("svc"), logger.WithOutput(&buf))
		log.Info("hello")

		assert.Contains(t, buf.String(), `"service":"svc"`)
		assert.Contains(t, buf.String(), `"env":"production"`)
	})
}
