package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailsift/api/handlers"
	"github.com/customeros/mailsift/api/middleware"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/metrics"
	"github.com/customeros/mailsift/internal/tracing"
)

const AppSourceAPI = "mailsift-api"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, ingestion interfaces.IngestionService, m *metrics.Metrics, apikey string) {
	if ingestion == nil {
		panic("Ingestion service cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	ingestionHandler := handlers.NewIngestionHandler(ingestion)

	api := r.Group("/v1")
	api.Use(middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.DefaultAPIKeyHeader,
		ValidAPIKey: apikey,
	}))
	api.Use(middleware.CustomContextMiddleware(AppSourceAPI))
	api.Use(middleware.TracingMiddleware())
	{
		users := api.Group("/users/:userId")
		{
			users.POST("/ingestion", ingestionHandler.RunIngestion())
			users.GET("/report", ingestionHandler.UserReport())
		}

		api.POST("/emails/:id/reclassify", ingestionHandler.Reclassify())
		api.GET("/attachments/:id/content", ingestionHandler.AttachmentContent())
		api.POST("/staging/sweep", ingestionHandler.SweepStaging())
	}
}
