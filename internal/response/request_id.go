package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is where the middleware stores the request id in
// the gin context.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags each request with an id, honoring an
// X-Request-ID supplied by the caller and minting one otherwise. The id
// is echoed back on the response so clients can quote it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
