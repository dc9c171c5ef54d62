package handler

import (
	"log"
	"net/http"
	"sync"

	config "csv-chart-api/configs"
	"csv-chart-api/pkg/router"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// 同じインスタンス内のリクエストは1つのデータセットを共有します。
func setupApp() *gin.Engine {
	once.Do(func() {
		log.Printf("🟢 [setupApp] Initializing Gin application")

		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		app = router.NewRouter(cfg)
	})
	return app
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔵 [Handler] Request received: %s %s", r.Method, r.URL.Path)
	setupApp().ServeHTTP(w, r)
}
