package ui

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "taguchi/internal/errors"
)

// requestLogger logs one line per API request
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "err", c.Errors.Last().Err)
		}
		logger.Debug("api request", attrs...)
	}
}

// abortWithError maps err onto its HTTP status and a JSON body carrying the
// error code
func abortWithError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// abortWithBadRequest rejects a body that could not be decoded
func abortWithBadRequest(c *gin.Context, err error) {
	abortWithError(c, apperrors.InvalidInput(err.Error()))
}
