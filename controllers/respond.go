package controllers

import (
	"cmticaret/pkg/apierr"
	"cmticaret/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail writes the standard error body and logs server-side failures with
// the underlying cause, which is never sent to the client.
func fail(c *gin.Context, err *apierr.Error) {
	if err.Code >= 500 && err.Err != nil {
		logger.Error(c.Request.Context(), "request failed", err.Err,
			zap.String("path", c.FullPath()))
	}
	c.JSON(err.Code, gin.H{"error": err.Message})
}
