package middleware

import (
	"net/http"

	"connect4ai/internal/utils"
	"connect4ai/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs errors attached with c.Error and answers 500 when the
// handler has not written a response of its own.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		logger.Log.Error("Request error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		if !c.Writer.Written() {
			utils.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Log.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				utils.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RequestLogger replaces gin.Logger with structured zap output.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
