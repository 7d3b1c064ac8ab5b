package utils

import "github.com/gin-gonic/gin"

// JSONError writes the error envelope shared by every endpoint and aborts
// the handler chain.
func JSONError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "code": code, "message": message})
}

// JSONValidationError is JSONError with per-field details.
func JSONValidationError(c *gin.Context, status int, message string, details map[string]string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"code":    "error.validation",
		"message": message,
		"details": details,
	})
}
