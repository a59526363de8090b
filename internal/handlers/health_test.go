package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	db := new(testutil.MockPinger)
	db.On("Ping", mock.Anything).Return(nil)

	redisUp := new(testutil.MockPinger)
	redisUp.On("Ping", mock.Anything).Return(nil)

	redisDown := new(testutil.MockPinger)
	redisDown.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	tests := []struct {
		name   string
		deps   map[string]Pinger
		status int
		failed []any
	}{
		{"database only", map[string]Pinger{"database": db}, http.StatusOK, nil},
		{"database and redis", map[string]Pinger{"database": db, "redis": redisUp}, http.StatusOK, nil},
		{"redis down", map[string]Pinger{"database": db, "redis": redisDown}, http.StatusServiceUnavailable, []any{"redis"}},
		{
			"several down are listed in name order",
			map[string]Pinger{"redis": redisDown, "database": redisDown, "cache": redisDown, "queue": redisDown},
			http.StatusServiceUnavailable,
			[]any{"cache", "database", "queue", "redis"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := drift.New()
			app.Get("/health", NewHealthHandler(tt.deps, logger.Nop()).Check)

			// map iteration order varies, so repeat to catch unstable bodies
			for range 5 {
				req := httptest.NewRequest(http.MethodGet, "/health", nil)
				rec := httptest.NewRecorder()
				app.ServeHTTP(rec, req)

				assert.Equal(t, tt.status, rec.Code)

				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				if tt.failed == nil {
					assert.Equal(t, "ok", body["status"])
				} else {
					assert.Equal(t, "unavailable", body["status"])
					assert.Equal(t, tt.failed, body["failed"])
				}
			}
		})
	}
}
