package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guild-genesis/herald/ports"
)

// SetupRouter sets up the Gin router for the bot's admin surface.
func SetupRouter(repo ports.ActivityRepository, adminToken string) *gin.Engine {
	router := gin.Default()

	handlers := NewAdminHandlers(repo)

	router.GET("/healthz", handlers.Health)

	// Protected operational routes
	admin := router.Group("/admin")
	admin.Use(AdminAuthMiddleware(adminToken))
	{
		admin.GET("/events/unprocessed", handlers.UnprocessedEvents)
		admin.POST("/events/:id/processed", handlers.MarkProcessed)
	}

	return router
}
