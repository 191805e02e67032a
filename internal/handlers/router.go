package handlers

import (
	"connect4ai/internal/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(httpHandler *HTTPHandler, wsHandler *WSHandler, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.ErrorHandler())

	// WebSocket
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/health", httpHandler.GetHealth)
		api.GET("/stats", httpHandler.GetStats)
		api.POST("/analyze", httpHandler.Analyze)

		api.POST("/games", httpHandler.NewGame)
		api.GET("/games/:id", httpHandler.GetGame)
		api.DELETE("/games/:id", httpHandler.DeleteGame)
		api.POST("/games/:id/moves", httpHandler.MakeMove)
		api.POST("/games/:id/reset", httpHandler.ResetGame)
	}

	return r
}
