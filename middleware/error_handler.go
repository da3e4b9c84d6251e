package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/queuectl/common"
)

// ErrorHandler renders the last handler error as JSON. Server-side failures
// carry the request id so they can be matched with the request log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		response := gin.H{"error": err.Error()}

		var apiErr common.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Status
			response = gin.H{"error": apiErr.Message}
			if apiErr.Fields != nil {
				response["fields"] = apiErr.Fields
			}
		}

		if status >= http.StatusInternalServerError {
			if id := c.GetString(requestIDKey); id != "" {
				response["request_id"] = id
			}
		}

		c.JSON(status, response)
	}
}
