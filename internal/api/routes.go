package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Contribution Insights API
// @version 1.0
// @description GitHub contribution analysis for project repository links
// @BasePath /api/v1

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		links := v1.Group("/links/:id")
		{
			links.POST("/analyse", h.AnalyseRepository)
			links.GET("/snapshots", h.ListSnapshots)
			links.GET("/snapshots/latest", h.GetLatestSnapshot)

			liveGroup := links.Group("/live")
			{
				liveGroup.GET("/branches", h.ListLiveBranches)
				liveGroup.GET("/commits", h.ListLiveCommits)
				liveGroup.GET("/my-commits", h.MyCommits)
			}
		}
	}

	return r
}
