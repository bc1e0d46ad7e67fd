package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"askpa/internal/app"
)

// Message writes the {message} body every non-chat endpoint uses.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// ServiceError maps a service-layer error onto a structured {message} body:
// validation problems are the client's fault, provider failures surface as a
// bad gateway, registry write failures as an internal error.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		Message(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrExternalService):
		Message(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, app.ErrPersistence):
		Message(c, http.StatusInternalServerError, err.Error())
	default:
		Message(c, http.StatusInternalServerError, err.Error())
	}
}
