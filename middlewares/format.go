package middlewares

import (
	"net/http"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/gin-gonic/gin"
)

// RespondEnvelope writes a data-access envelope. Failed envelopes use
// failStatus so clients can branch without parsing the body.
func RespondEnvelope[T any](c *gin.Context, env models.Envelope[T], okStatus, failStatus int) {
	if env.Success {
		c.JSON(okStatus, env)
		return
	}
	c.JSON(failStatus, env)
}

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, log *logger.Logger, message string, status int, err error) {
	entry := log.WithRequest(c.Request).WithField("status", status)
	if err != nil {
		entry = entry.WithField("error", err.Error())
	}
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	c.JSON(status, gin.H{"error": message})
}
