package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Araychaudhur/portfolio-2025/internal/middleware"
)

type RouterDeps struct {
	Ask   *AskHandler
	Debug *DebugHandler
	// RateLimitWindow throttles the ask routes per client; zero disables.
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	askGroup := api.Group("")
	if deps.RateLimitWindow > 0 {
		askGroup.Use(middleware.RateLimit(deps.RateLimitWindow))
	}
	askGroup.GET("/ask", deps.Ask.Ask)
	askGroup.POST("/ask", deps.Ask.Ask)
	askGroup.POST("/ask/scoped", deps.Ask.AskScoped)

	api.GET("/debug/count", deps.Debug.Count)
	api.GET("/debug/embeddings", deps.Debug.Embeddings)
	api.GET("/debug/search", deps.Debug.Search)
	api.GET("/selftest", deps.Debug.Selftest)
}
