package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	config "csv-chart-api/configs"
	"csv-chart-api/pkg/router"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)

	// .envファイルを読み込み（存在しなくてもよい）
	_ = godotenv.Load("../../.env")

	os.Exit(m.Run())
}

func TestApplicationSetup(t *testing.T) {
	// 設定の読み込みテスト
	cfg := config.LoadConfig()
	assert.NotNil(t, cfg, "Config should not be nil")
	assert.Positive(t, cfg.MaxUploadBytes())

	r := router.NewRouter(cfg)
	assert.NotNil(t, r, "Router should not be nil")
}

func TestRouterSetup(t *testing.T) {
	cfg := config.LoadConfig()
	cfg.APIKey = ""
	r := router.NewRouter(cfg)

	// ヘルスチェックのテスト
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	// 選択肢APIのテスト
	req, _ = http.NewRequest("GET", "/api/v1/plot-types", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "histogram")
}
