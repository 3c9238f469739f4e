package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestIDMiddleware keeps a caller-supplied X-Request-ID or generates one,
// and echoes it on the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// accessLogMiddleware logs one entry per request and makes observer
// available to handlers through the request context.
func accessLogMiddleware(observer observability.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if observer == nil {
			c.Next()
			return
		}

		ctx := observability.ContextWithObserver(c.Request.Context(), observer)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		attrs := []observability.Attribute{
			observability.String(observability.AttrRequestID, c.GetString(requestIDKey)),
			observability.String(observability.AttrHTTPMethod, c.Request.Method),
			observability.String(observability.AttrHTTPRoute, c.FullPath()),
			observability.Int(observability.AttrHTTPStatusCode, c.Writer.Status()),
			observability.Int(observability.AttrHTTPResponseBodySize, c.Writer.Size()),
			observability.Duration(observability.AttrHTTPDuration, time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, observability.String(observability.AttrError, c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			observer.Error(ctx, "HTTP request", attrs...)
		} else {
			observer.Info(ctx, "HTTP request", attrs...)
		}
	}
}
