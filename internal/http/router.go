package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/admitbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/admitbridge-backend/internal/http/middleware"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	EventHandler         *httpH.EventHandler
	PredictionRunHandler *httpH.PredictionRunHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Internal service-to-service triggers
		if cfg.EventHandler != nil {
			api.POST("/internal/events/student-created", cfg.EventHandler.StudentCreated)
		}

		if cfg.PredictionRunHandler != nil {
			api.GET("/students/:id/prediction-runs", cfg.PredictionRunHandler.ListByStudent)
			api.GET("/prediction-runs/:id", cfg.PredictionRunHandler.Get)
		}
	}

	return r
}
