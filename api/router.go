package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the wallet API on the given router.
func RegisterRoutes(router *gin.Engine, handler *PortfolioHandler) {
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/wallet/:addressOrName", handler.GetWalletHandler)
		apiGroup.GET("/health", handler.HealthHandler)
	}
}
