package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	config "csv-chart-api/configs"
	"csv-chart-api/pkg/render"
	"csv-chart-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"malformed", &services.PayloadError{Reason: "missing comma"}, http.StatusBadRequest, "malformed_payload"},
		{"parse", &services.ParseError{Source: "csv", Line: 3, Err: errors.New("bad")}, http.StatusBadRequest, "parse_error"},
		{"request", &services.RequestError{Field: "column", Value: "z", Err: errors.New("unknown")}, http.StatusBadRequest, "invalid_request"},
		{"no dataset", fmt.Errorf("render: %w", services.ErrNoDataset), http.StatusNotFound, "no_dataset"},
		{"nothing to render", render.ErrNothingToRender, http.StatusUnprocessableEntity, "render_error"},
		{"format", render.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"},
		{"max bytes", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "too_large"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
			assert.Equal(t, tt.kind, errorKind(tt.err))
		})
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, &services.RequestError{Field: "kind", Value: "donut", Err: errors.New("unknown plot kind")})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid_request", body["kind"])
	assert.Contains(t, body["error"], "donut")
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	assert.Equal(t, 5, queryInt(c, "limit", 10))

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	assert.Equal(t, 10, queryInt(c, "limit", 10))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, 10, queryInt(c, "limit", 10))
}

func TestPeriodHours(t *testing.T) {
	assert.Equal(t, 1, periodHours("1h"))
	assert.Equal(t, 24, periodHours("24h"))
	assert.Equal(t, 168, periodHours("7d"))
	assert.Equal(t, 24, periodHours("unknown"))
}

func TestAdminRequiresPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// パスワード未設定ではメンテナンス操作できない
	h := NewAdminHandler(&config.Config{AdminUsername: "admin"})
	r := gin.New()
	r.POST("/start", h.StartMaintenance)
	r.GET("/health", h.HealthCheck)

	body := bytes.NewBufferString(`{"username":"admin","password":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/start", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, h.InMaintenance())

	req = httptest.NewRequest(http.MethodPost, "/start", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIndexPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", Index)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "readAsDataURL")
}
