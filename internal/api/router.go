package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/visualdelta/internal/api/handlers"
	"github.com/your-org/visualdelta/internal/api/ws"
	"github.com/your-org/visualdelta/internal/auth"
	"github.com/your-org/visualdelta/internal/eventbus"
	"github.com/your-org/visualdelta/internal/pipeline"
	"github.com/your-org/visualdelta/internal/storage"
)

type RouterConfig struct {
	BearerToken string
	DB          *storage.PostgresStore
	Producer    *eventbus.Producer
	Registry    *pipeline.Registry
	Hub         *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.BearerMiddleware(cfg.BearerToken))

	callH := handlers.NewCallHandler(cfg.DB, cfg.Registry)
	v1.POST("/calls", callH.Create)
	v1.GET("/calls", callH.List)
	v1.GET("/calls/:callId", callH.Get)
	v1.DELETE("/calls/:callId", callH.Delete)

	snapshotH := handlers.NewSnapshotHandler(cfg.DB, cfg.Registry, cfg.Producer)
	v1.POST("/calls/:callId/visual/snapshot", snapshotH.Submit)

	v1.GET("/calls/:callId/visual/events", cfg.Hub.HandleWS)

	return r
}
