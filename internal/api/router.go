package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/reunite/internal/api/handlers"
	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/match"
	"github.com/your-org/reunite/internal/queue"
	"github.com/your-org/reunite/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Engine   *match.Engine
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public poster view (the link sent to reporters)
	reportH := handlers.NewReportHandler(cfg.DB, cfg.MinIO)
	r.GET("/posters/:code", reportH.GetByPosterCode)

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAPIKey(cfg.APIKey))

	// WebSocket match-activity feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Shelters
	shelterH := handlers.NewShelterHandler(cfg.DB)
	v1.POST("/shelters", shelterH.Create)
	v1.GET("/shelters", shelterH.List)
	v1.GET("/shelters/:id", shelterH.Get)

	// Persons (registration intake)
	personH := handlers.NewPersonHandler(cfg.DB, cfg.MinIO, cfg.Engine, cfg.Producer, cfg.Hub)
	v1.POST("/persons", personH.Register)
	v1.POST("/persons/bulk", personH.BulkRegister)
	v1.GET("/persons", personH.List)
	v1.GET("/persons/:id", personH.Get)
	v1.POST("/persons/:id/photo", personH.UploadPhoto)
	v1.GET("/persons/:id/photo", personH.GetPhoto)

	// Missing-person reports
	v1.POST("/reports", reportH.Create)
	v1.GET("/reports", reportH.List)
	v1.GET("/reports/:id", reportH.Get)
	v1.POST("/reports/:id/photo", reportH.UploadPhoto)
	v1.GET("/reports/:id/photo", reportH.GetPhoto)

	// Match confirmation
	matchH := handlers.NewMatchHandler(cfg.DB, cfg.Producer, cfg.Hub)
	v1.POST("/matches", matchH.Confirm)
	v1.GET("/matches/:id", matchH.Get)

	return r
}
