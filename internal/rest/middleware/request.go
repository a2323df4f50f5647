package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/recibohq/recibo/internal/types"
)

// RequestIDMiddleware assigns every request an id, propagated through
// the context and echoed in the response headers.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)
	c.Next()
}
