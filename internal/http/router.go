package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/station-marker/internal/http/handlers"
	httpMW "github.com/yungbote/station-marker/internal/http/middleware"
	"github.com/yungbote/station-marker/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	Log         *logger.Logger

	HealthHandler  *httpH.HealthHandler
	MarkHandler    *httpH.MarkHandler
	StationHandler *httpH.StationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())
	r.NoMethod(httpH.MethodNotAllowed)

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Marking
	if cfg.MarkHandler != nil {
		r.POST("/api/mark", cfg.MarkHandler.Mark)
		r.OPTIONS("/api/mark", httpH.Preflight)

		// Flat response shape for clients of the serverless deployment.
		r.POST("/.netlify/functions/mark", cfg.MarkHandler.MarkLegacy)
		r.OPTIONS("/.netlify/functions/mark", httpH.Preflight)
	}

	// Stations
	if cfg.StationHandler != nil {
		r.GET("/api/stations", cfg.StationHandler.ListStations)
	}

	return r
}
