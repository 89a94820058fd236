package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All responses share one JSON envelope: successes carry success=true plus
// payload fields, failures success=false plus an error string and optional
// per-field details.
func respondOK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "validation failed",
		"details": err.Error(),
	})
}
