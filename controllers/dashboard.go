package controllers

import (
	"net/http"
	"strconv"

	"freelance-crm-api/config"
	"freelance-crm-api/middleware"
	"freelance-crm-api/services"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns the global dashboard statistics
func GetDashboardStats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	stats, err := services.NewDashboardStatisticsService(config.DB).GetStatistics(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetQuickStats returns the lightweight dashboard aggregate
func GetQuickStats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	stats, err := services.NewDashboardQuickStatsService(config.DB).GetQuickStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetBillingCards returns the billing cards aggregate
func GetBillingCards(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	cards, err := services.NewDashboardBillingService(config.DB).GetBillingCards(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"billing": cards})
}

// GetRevenueChart returns the time-bucketed revenue series
func GetRevenueChart(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	period := c.DefaultQuery("period", "current_month")

	chart, err := services.NewDashboardRevenueService(config.DB).RevenueChart(userID, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chart)
}

// GetMonthlyRevenueStats returns current vs previous month revenue
func GetMonthlyRevenueStats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	stats, err := services.NewDashboardRevenueService(config.DB).GetMonthlyRevenueStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetYearlyRevenueSummary returns the running calendar-year summary
func GetYearlyRevenueSummary(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	summary, err := services.NewDashboardRevenueService(config.DB).GetYearlyRevenueSummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetRecentActivities returns the merged activity timeline
func GetRecentActivities(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))

	activities, err := services.NewDashboardActivitiesService(config.DB).RecentActivities(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// GetUpcomingTasks returns the open tasks list, optionally urgent-only
func GetUpcomingTasks(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	urgentOnly := c.Query("urgent") == "true" || c.Query("urgent") == "1"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	tasks, err := services.NewDashboardEventsService(config.DB).UpcomingTasks(userID, urgentOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrLoadingData.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
