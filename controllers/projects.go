package controllers

import (
	"net/http"
	"strconv"

	"freelance-crm-api/config"
	"freelance-crm-api/middleware"
	"freelance-crm-api/services"

	"github.com/gin-gonic/gin"
)

// GetProjects returns the project listing with statistics and dropdowns
func GetProjects(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	var filters services.ProjectFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, perPage := pageParams(c)

	data, err := services.NewProjectListService(config.DB).GetCompleteData(userID, filters, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetProject returns one project with its events, or a not-found envelope
func GetProject(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	payload, err := services.NewProjectDetailService(config.DB).GetProjectDetails(userID, uint(projectID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrLoadingData.Error()})
		return
	}

	if payload.Project == nil {
		c.JSON(http.StatusNotFound, payload)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// pageParams reads the pagination query parameters.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return page, perPage
}
