// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"showalert/internal/infrastructure/http/v1/handlers"
	"showalert/internal/infrastructure/http/v1/middleware"
	"showalert/internal/infrastructure/storage/postgres"
	"showalert/pkg/logger"
)

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Development switches gin to debug mode
	Development bool

	// DB is checked by the readiness check
	DB handlers.Pinger

	// Redis is optional; nil when the detail cache is disabled
	Redis handlers.Pinger

	// PoolStats feeds /health/info; optional
	PoolStats func() postgres.PoolStats

	ShowQueries  handlers.ShowQueries
	ShowCommands handlers.ShowCommands
	Artists      handlers.ArtistService
	Genres       handlers.GenreService

	// Now is the clock handed to listing and count requests; optional
	Now func() time.Time
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.PoolStats)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		base := handlers.NewBaseHandler()
		registerPublicRoutes(v1, base, cfg)
		registerAdminRoutes(v1.Group("/admin"), base, cfg)
	}

	return router
}

// registerPublicRoutes registers listing and show page endpoints.
func registerPublicRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	showHandler := handlers.NewShowHandler(base, cfg.ShowQueries, cfg.Now)
	shows := rg.Group("/shows")
	{
		shows.GET("", showHandler.List)
		shows.GET("/:id", showHandler.Detail)
		shows.POST("/:id/view", showHandler.View)
		shows.POST("/terminated/count", showHandler.CountTerminated)
	}

	artistHandler := handlers.NewArtistHandler(base, cfg.Artists)
	rg.GET("/artists", artistHandler.List)

	genreHandler := handlers.NewGenreHandler(base, cfg.Genres)
	rg.GET("/genres", genreHandler.ListActive)
}

// registerAdminRoutes registers the write endpoints.
func registerAdminRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	adminShows := handlers.NewAdminShowHandler(base, cfg.ShowCommands, cfg.ShowQueries)
	shows := rg.Group("/shows")
	{
		shows.GET("", adminShows.Overview)
		shows.POST("", adminShows.Create)
		shows.GET("/:id", adminShows.Info)
		shows.PUT("/:id", adminShows.Update)
		shows.DELETE("/:id", adminShows.Delete)
	}

	RegisterCatalogRoutes(rg.Group("/artists"), handlers.NewArtistAdminHandler(base, cfg.Artists))
	RegisterCatalogRoutes(rg.Group("/genres"), handlers.NewGenreAdminHandler(base, cfg.Genres))
}
