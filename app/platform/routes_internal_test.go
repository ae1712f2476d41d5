package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sharedcontext/core/logger"
)

func TestApp_LoggingConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		requests    bool
		body        bool
		wantRequest bool
		wantBody    bool
	}{
		{name: "defaults", wantRequest: false, wantBody: false},
		{name: "requests only", requests: true, wantRequest: true, wantBody: false},
		{name: "body without requests", body: true, wantRequest: false, wantBody: false},
		{name: "requests with body", requests: true, body: true, wantRequest: true, wantBody: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log := logger.Nop()
			a := &App{
				log: log,
				cfg: Config{
					LogRequests:    tt.requests,
					LogRequestBody: tt.body,
					LogSlowRequest: 3 * time.Second,
				},
			}

			cfg := a.loggingConfig()
			assert.Equal(t, tt.wantRequest, cfg.LogRequest)
			assert.Equal(t, tt.wantBody, cfg.LogRequestBody)
			assert.Equal(t, 3*time.Second, cfg.SlowRequestThreshold)
			assert.Same(t, log, cfg.Logger)
		})
	}
}
