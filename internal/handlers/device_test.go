package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDeviceHandler_RejectsMissingCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &DeviceHandler{logger: zap.NewNop()}

	r := gin.New()
	r.POST("/cli/auth/token", h.Token)
	r.POST("/cli/auth/verify-code", h.VerifyCode)

	tests := []struct {
		name, path, body string
	}{
		{"token empty json", "/cli/auth/token", `{}`},
		{"token blank code", "/cli/auth/token", `{"deviceCode":""}`},
		{"verify empty json", "/cli/auth/verify-code", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error":"invalid_request"`)
		})
	}
}
