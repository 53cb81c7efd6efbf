package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubChecker struct{ err error }

func (s stubChecker) Health(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		db, store  HealthChecker
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthy",
			db:         stubChecker{},
			store:      stubChecker{},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"healthy","database":"connected","device_store":"connected"}`,
		},
		{
			name:       "device store down",
			db:         stubChecker{},
			store:      stubChecker{err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody: `{"status":"unhealthy","database":"connected",` +
				`"device_store":"disconnected","device_store_error":"dial tcp: refused"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.db, tt.store).Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
