package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error writes the structured error envelope used across the API.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// internalError logs the full error server-side and hands the caller a
// generic message.
func internalError(c *gin.Context, log *zap.Logger, err error) {
	log.Error("unhandled error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	Error(c, http.StatusInternalServerError,
		"An unexpected error occurred. Please try again later.")
}
