package middleware

import "github.com/gin-gonic/gin"

// abortJSON stops the chain with the API's failure envelope. It mirrors
// handlers.ErrorResponse so middleware rejections look like handler errors.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
