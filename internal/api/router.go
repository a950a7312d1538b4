package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/zonemap-backend-go/internal/handler"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the router wires into routes.
type Deps struct {
	Zones   *handler.ZoneHandler
	Limiter *middleware.RateLimiter
	Logger  logging.Logger
}

// SetupRouter 设置路由
func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))

	// CORS 中间件
	r.Use(middleware.CORS())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Zone map API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimit(deps.Limiter))
	}
	{
		zones := api.Group("/zones")
		{
			zones.GET("", deps.Zones.ListZones)
			zones.PUT("", deps.Zones.PutZones)
			zones.POST("/import", deps.Zones.ImportGeoJSON)
			zones.GET("/map", deps.Zones.GetMap)
			zones.GET("/geojson", deps.Zones.GetGeoJSON)
			zones.GET("/snapshot.png", deps.Zones.GetSnapshot)
			zones.GET("/share", deps.Zones.GetShare)
		}
	}

	return r
}
