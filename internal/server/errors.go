package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

// fail writes err as {"detail": reason} with the status its kind maps to.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	reason := service.Reason(err)

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[warn] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if !errors.Is(err, service.ErrInternal) {
			reason = "internal server error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": reason})
}

// badInput reports a request that failed binding or validation.
func badInput(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
