package main

import (
    "net/http"
    "os"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "go.uber.org/zap"
)

const requestIDKey = "request_id"

// apiKeyMiddleware enforces X-API-Key when API_KEY is set.
func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != key { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

// requestIDMiddleware keeps the caller's X-Request-ID or assigns a new one.
func requestIDMiddleware(c *gin.Context) {
    id := c.GetHeader("X-Request-ID")
    if id == "" { id = uuid.NewString() }
    c.Set(requestIDKey, id)
    c.Header("X-Request-ID", id)
    c.Next()
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        c.Next()
        fields := []zap.Field{
            zap.String("method", c.Request.Method),
            zap.String("path", c.Request.URL.Path),
            zap.Int("status", c.Writer.Status()),
            zap.Duration("took", time.Since(start)),
            zap.String("request_id", c.GetString(requestIDKey)),
        }
        if len(c.Errors) > 0 { fields = append(fields, zap.String("errors", c.Errors.String())) }
        if c.Writer.Status() >= http.StatusInternalServerError {
            logger.Error("request", fields...)
            return
        }
        logger.Info("request", fields...)
    }
}
