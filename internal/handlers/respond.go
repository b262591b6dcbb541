package handlers

import (
	"net/http"

	"edurank/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy to HTTP statuses and writes the
// failure envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeConflict:
		status = http.StatusConflict
	case apperr.CodeStorage:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, apperr.Fail(err))
}

// respondOK writes a success envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, apperr.OK(data))
}
