package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key and response header for the request id.
const RequestIDKey = "X-Request-ID"

// RequestID tags each request with a uuid, honoring one supplied by the
// client so ids survive proxy hops.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDKey, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "" when absent.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
