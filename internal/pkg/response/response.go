package response

import "github.com/gin-gonic/gin"

// The ask API is consumed by the portfolio UI which expects a flat body:
// success payloads are returned as-is, failures are {"error": "..."} with a
// non-2xx status.

func JSON(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
