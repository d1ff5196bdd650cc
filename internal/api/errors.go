package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"talentlink/internal/service/lifecycle"
)

// respondError translates lifecycle errors into HTTP statuses. Anything not in
// the taxonomy is a 500 with a generic body; details stay in the logs.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "not permitted"})
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, lifecycle.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrDuplicateApplication):
		c.JSON(http.StatusConflict, gin.H{"error": "application already submitted"})
	case errors.Is(err, lifecycle.ErrProposalPending):
		c.JSON(http.StatusConflict, gin.H{"error": "a status proposal is already pending"})
	case errors.Is(err, lifecycle.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "stale update, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
