package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vegasq/tabq/internal/logger"
	"github.com/vegasq/tabq/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const corsAllowHeaders = "Origin, X-Requested-With, Content-Type, Accept, X-Secret, X-Host, X-Token, X-Key, X-Request-ID, ngrok-skip-browser-warning"

// RequestID reuses the client's X-Request-ID or assigns a new one, echoes
// it in the response and stores it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// CORS sets the CORS headers and answers preflight requests with 200.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// AccessLog logs every request and records its HTTP metrics.
func AccessLog(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.RequestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(elapsed.Seconds())

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", elapsed,
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Error())
		}

		log := logger.With(c.Request.Context(), l)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", attrs...)
			return
		}
		log.Info("request", attrs...)
	}
}

// Gate rejects requests the authorizer does not accept.
func Gate(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(c.Request); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}
