// Package router はサーバー本体とサーバーレス関数で共通のGinルーターを組み立てます。
package router

import (
	"log"
	"net/http"
	"time"

	config "csv-chart-api/configs"
	"csv-chart-api/pkg/handlers"
	"csv-chart-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware は X-API-KEY ヘッダーを検証します。APIキー未設定の場合は素通しです。
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || apiKey == "default_secret_key" {
			c.Next()
			return
		}
		providedKey := c.GetHeader("X-API-KEY")
		if providedKey != apiKey {
			log.Printf("❌ [認証] 無効なAPI Keyです: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-API-KEY")
	cfg.ExposeHeaders = []string{"Content-Disposition"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// NewRouter は全ルートを登録したGinエンジンを返します。
func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// サービスの初期化
	monitoringService := services.NewMonitoringService()
	visualizerService := services.NewDefaultVisualizerService(cfg.MaxUploadBytes(), cfg.PreviewRows)

	// ハンドラーの初期化
	visualizerHandler := handlers.NewVisualizerHandler(visualizerService, cfg.MaxUploadBytes(), cfg.ChartWidth, cfg.ChartHeight)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(corsMiddleware(cfg.CORSAllowOrigins))
	r.Use(adminHandler.MaintenanceMiddleware())
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	r.GET("/", handlers.Index)
	r.GET("/health", adminHandler.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg.APIKey))
	{
		// アップロードAPI
		v1.POST("/upload", visualizerHandler.Upload)
		v1.POST("/upload/file", visualizerHandler.UploadFile)
		v1.GET("/dataset", visualizerHandler.GetDataset)
		v1.DELETE("/dataset", visualizerHandler.DeleteDataset)

		// 派生ビューAPI
		v1.GET("/preview", visualizerHandler.GetPreview)
		v1.GET("/columns", visualizerHandler.GetColumns)
		v1.GET("/plot-types", visualizerHandler.GetPlotTypes)
		v1.GET("/classification", visualizerHandler.GetClassification)

		// グラフAPI
		v1.POST("/chart", visualizerHandler.BuildChart)
		v1.GET("/chart/render", visualizerHandler.RenderChart)

		charts := v1.Group("/charts/auto")
		{
			charts.GET("", visualizerHandler.GetAutoCharts)
			charts.GET("/export", visualizerHandler.ExportAutoCharts)
			charts.GET("/:index/render", visualizerHandler.RenderAutoChart)
		}

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	return r
}
