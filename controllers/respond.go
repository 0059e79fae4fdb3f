package controllers

import (
	"errors"
	"net/http"

	"stablebank/models"
	"stablebank/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps ledger failure kinds to HTTP statuses. Unknown errors are
// logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		utils.LogError(err, c.Request.Method+" "+c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
