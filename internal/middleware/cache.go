package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type bodyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// ResponseCache briefly caches successful GET responses. Listings are read
// far more often than bookings change; the TTL bounds staleness.
type ResponseCache struct {
	store *cache.Cache
}

func NewResponseCache(ttl, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, cleanupInterval)}
}

func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if entry, ok := rc.store.Get(key); ok {
			cached := entry.(cachedResponse)
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		w := &bodyCapture{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rc.store.SetDefault(key, cachedResponse{
				status:      c.Writer.Status(),
				contentType: c.Writer.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			})
		}
	}
}
