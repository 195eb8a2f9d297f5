package controllers

import (
	"net/http"
	"strconv"

	"freelance-crm-api/config"
	"freelance-crm-api/middleware"
	"freelance-crm-api/services"

	"github.com/gin-gonic/gin"
)

// GetEvents returns the event listing with counters and dropdowns
func GetEvents(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	var filters services.EventFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, perPage := pageParams(c)

	data, err := services.NewEventListService(config.DB).GetCompleteData(userID, filters, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetEvent returns one event with its project and client, or a not-found
// envelope
func GetEvent(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	payload, err := services.NewEventDetailService(config.DB).GetEventDetails(userID, uint(eventID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrLoadingData.Error()})
		return
	}

	if payload.Event == nil {
		c.JSON(http.StatusNotFound, payload)
		return
	}

	c.JSON(http.StatusOK, payload)
}
