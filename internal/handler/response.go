// Package handler exposes the claim lifecycle over REST.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"claimdesk/internal/auth"
	"claimdesk/internal/lifecycle"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// respondError maps domain error kinds onto HTTP statuses and actionable
// messages. Every error a service can return is classified here; anything
// unrecognized is a 500 with no internals leaked.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "you do not have permission to perform this action",
		})

	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})

	case errors.Is(err, storage.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{
			"error": "this claim was updated by someone else, please refresh",
		})

	case errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, auth.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, lifecycle.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "service temporarily unavailable, please retry",
		})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondBindError reports a malformed or failing-validation request body.
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}
