package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	requestStartKey = "request_start"

	metaCacheHit       = "cache_hit"
	metaRevision       = "revision"
	metaProcessingTime = "processing_time_ms"
)

// WithResponseMeta prepares the metadata map rendered into the response envelope and remembers when the request started.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the payload came from the free-teacher cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta(c)[metaCacheHit] = hit
}

// SetRevision records the plan revision a response was rendered from.
func SetRevision(c *gin.Context, revision string) {
	if revision == "" {
		return
	}
	meta(c)[metaRevision] = revision
}

// ExtractMeta returns the metadata collected so far, stamping the elapsed time when the request start is known.
// It returns nil when nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	if start, ok := c.Get(requestStartKey); ok {
		if _, stamped := m[metaProcessingTime]; !stamped {
			m[metaProcessingTime] = time.Since(start.(time.Time)).Milliseconds()
		}
	}
	return m
}

func meta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if value, exists := c.Get(responseMetaKey); exists {
		if m, ok := value.(map[string]interface{}); ok {
			return m
		}
	}
	m := make(map[string]interface{})
	c.Set(responseMetaKey, m)
	return m
}
