package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl lets clients and proxies reuse responses for maxAge. Meant for
// read-only data such as the content catalog.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := "public, max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoStore marks responses as uncacheable. Exercise state changes with every
// answer, so a cached copy would show stale progress.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
