package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

// respondError maps service errors onto HTTP statuses. Unknown errors
// become a generic 500 so internals never leak to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientBalance):
		c.JSON(http.StatusForbidden, gin.H{"error": "not enough reveal keys"})
	case errors.Is(err, models.ErrIncorrectAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect answer"})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, models.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
