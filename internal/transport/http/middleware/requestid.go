package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/requestid"
)

// RequestID injects a request ID into the context and response header,
// keeping a well-formed incoming X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.Accept(c.GetHeader(requestid.Header))

		ctx := requestid.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestid.Header, id)
		c.Next()
	}
}
