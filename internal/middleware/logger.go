package middleware

import (
	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// RequestLogger routes gin access logs through logrus
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		entry := logrus.WithFields(logrus.Fields{
			"method":    param.Method,
			"path":      param.Path,
			"status":    param.StatusCode,
			"latency":   param.Latency.String(),
			"client_ip": param.ClientIP,
		})
		if param.StatusCode >= 500 {
			entry.Error("HTTP request")
		} else {
			entry.Info("HTTP request")
		}
		return "" // logrus already wrote the line
	})
}
