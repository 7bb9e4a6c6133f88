package api

import (
	"net/http"

	"opentrainer/plan-service/internal/repository"
	"opentrainer/plan-service/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the read-side plans API.
func SetupRoutes(
	router *gin.Engine,
	repo repository.PlanRepository,
	archive storage.PlanArchive,
) {
	planHandler := NewPlanHandler(repo, archive)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		userGroup := apiV1.Group("/users/:userId")
		{
			userGroup.GET("/plans", planHandler.ListPlans)
			userGroup.GET("/plans/:planId", planHandler.GetPlan)
			userGroup.DELETE("/plans/:planId", planHandler.DeletePlan)
		}
	}
}

// abortWithError sends a JSON error response and stops the handler chain.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
