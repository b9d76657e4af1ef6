package api

import (
	"net/http"

	"flux-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase)
	requireAuth := delivery.AuthMiddleware(h.authUsecase)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", h.taskHandler.GetTasks)
			tasks.GET("/stats", h.taskHandler.GetStats)
			tasks.GET("/search", h.taskHandler.Search)
			tasks.GET("/notes/recent", h.taskHandler.GetRecentNotes)
			tasks.GET("/:id", h.taskHandler.GetTaskByID)
			tasks.PATCH("/:id/status", h.taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id", h.taskHandler.UpdateTask)
			tasks.POST("/ingest", h.taskHandler.IngestEvidence)
			tasks.POST("/notes", h.taskHandler.CreateNote)
		}

		// Report routes (protected)
		reports := api.Group("/reports")
		reports.Use(requireAuth)
		{
			reports.POST("/test-cases", h.reportHandler.TestCases)
			reports.POST("/requirements", h.reportHandler.RequirementDoc)
			reports.POST("/scrum-email", h.reportHandler.ScrumEmail)
		}

		api.POST("/chat", requireAuth, h.taskHandler.Chat)

		// Settings routes (protected) - Runtime configuration
		settings := api.Group("/settings")
		settings.Use(requireAuth)
		{
			settings.GET("/models", h.settingsHandler.ListModels)
			settings.GET("/ollama", h.settingsHandler.GetOllamaSettings)
			settings.PUT("/ollama", h.settingsHandler.UpdateOllamaSettings)
			settings.POST("/ollama/test", h.settingsHandler.TestOllamaConnection)
		}
	}
}
