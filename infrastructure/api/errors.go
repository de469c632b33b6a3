package api

import (
	"chat-hub/errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	errors.CodeAuthentication: http.StatusUnauthorized,
	errors.CodeNotFound:       http.StatusNotFound,
	errors.CodeValidation:     http.StatusBadRequest,
	errors.CodeForbidden:      http.StatusForbidden,
	errors.CodeConflict:       http.StatusConflict,
	errors.CodePersistence:    http.StatusInternalServerError,
	errors.CodeInternal:       http.StatusInternalServerError,
}

// abort writes the error as {"code","message"}. Server side failures are
// logged and their detail kept out of the response.
func abort(c *gin.Context, log *slog.Logger, err error) {
	code := errors.Code(err)
	status := statusByCode[code]
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"code":    errors.CodeValidation,
		"message": "invalid body",
		"error":   err.Error(),
	})
}
