package handler

import (
	"socialdl/internal/model"
	"socialdl/internal/service"
	"socialdl/pkg/logger"
	"socialdl/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware and routes onto a fresh gin engine
func NewRouter(cfg *model.Config, rs *service.ResolveService, ss *service.StreamService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(logger.GinLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.Security.AllowedOrigins))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
	}

	infoHandler := NewInfoHandler(rs)
	downloadHandler := NewDownloadHandler(rs, ss)

	router.GET("/", infoHandler.Root)

	api := router.Group("/api")
	{
		api.GET("/platforms", infoHandler.Platforms)
		api.GET("/info", infoHandler.Info)

		api.POST("/download", downloadHandler.StartDownload)
		api.GET("/direct", downloadHandler.Direct)

		api.GET("/health", infoHandler.HealthCheck)
	}

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	router.NoRoute(NotFound)
	return router
}
