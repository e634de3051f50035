package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdtgct/music-fingerprint/internal/logger"
)

// requestIDMiddleware stamps every request with an X-Request-ID,
// generating one when the caller didn't supply it, mirroring the
// teacher's RequestIDMiddleware.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// ginLoggerMiddleware logs each request at Info level with its status,
// latency and request ID, the way the teacher's GinLoggerMiddleware
// does with zap instead of gin's default text logger.
func ginLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logger.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// metricsMiddleware increments fp_errors_total for any 5xx response;
// per-operation counters (inserts, searches) are recorded by the rtree
// package itself around the operation, not here.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= 500 {
			recordServerError(c.Request.URL.Path)
		}
	}
}
