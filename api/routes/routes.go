package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/finproc/statement-processor/api/handlers"
	"github.com/finproc/statement-processor/api/middleware"
)

// SetupRoutes wires the API surface.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, allowedOrigin string) {
	r.Use(middleware.CORS(allowedOrigin))

	r.GET("/health", h.Statement.Health)

	v1 := r.Group("/api/v1")

	statements := v1.Group("/statements")
	{
		statements.POST("/upload", h.Statement.Upload)
		statements.GET("/status/:jobId", h.Statement.GetStatus)
		statements.GET("/download/:jobId", h.Statement.Download)
		statements.GET("", h.Statement.ListJobs)
	}
}
