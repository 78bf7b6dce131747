package api

import (
	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/health"
	"github.com/SlpAus/tarot-reading-backend/internal/reading"
	"github.com/SlpAus/tarot-reading-backend/internal/spread"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", health.Healthz)

	api := router.Group("/api")
	{
		// 静态目录：卡牌和牌阵 /api/cards /api/spreads
		api.GET("/cards", card.GetAllCards)
		api.GET("/cards/:id", card.GetCardByID)
		api.GET("/spreads", spread.GetAllSpreads)

		// 解读会话相关的路由组 /api/readings
		readingRoutes := api.Group("/readings")
		{
			readingRoutes.POST("", reading.CreateReading)
			readingRoutes.POST("/:id/reveal", reading.RevealCard)
			readingRoutes.GET("/:id/summary", reading.GetSummary)
			readingRoutes.POST("/:id/augment", reading.TriggerAugment)
			readingRoutes.DELETE("/:id", reading.ClearReading)
		}

		// 当日AI解读用量查询
		api.GET("/usage", reading.GetUsage)
	}
}
