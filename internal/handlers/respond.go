package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/api/internal/apperrors"
)

// respondError is the single error boundary: every failure leaves as
// {message} with the mapped status. Uncategorized errors are logged in full
// and reported as a generic 500.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"message": apperrors.ClientMessage(err)})
}
