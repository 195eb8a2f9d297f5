package routes

import (
	"freelance-crm-api/controllers"
	"freelance-crm-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Freelance CRM API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Projects
			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.GetProjects)
				projects.GET("/:id", controllers.GetProject)
			}

			// Events
			events := protected.Group("/events")
			{
				events.GET("", controllers.GetEvents)
				events.GET("/:id", controllers.GetEvent)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
				dashboard.GET("/quick-stats", controllers.GetQuickStats)
				dashboard.GET("/billing", controllers.GetBillingCards)
				dashboard.GET("/revenue", controllers.GetRevenueChart)
				dashboard.GET("/revenue/monthly", controllers.GetMonthlyRevenueStats)
				dashboard.GET("/revenue/yearly", controllers.GetYearlyRevenueSummary)
				dashboard.GET("/activities", controllers.GetRecentActivities)
				dashboard.GET("/upcoming-tasks", controllers.GetUpcomingTasks)
			}
		}
	}
}
