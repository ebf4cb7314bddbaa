package mw

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache caches GET responses keyed by request URI and flushes
// them when a mutation reports a changed entity set.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration

	// pathsByEntity maps a changed entity set name to the route path
	// prefixes whose cached responses it makes stale.
	pathsByEntity map[string][]string
}

// NewResponseCache creates a response cache with the given TTL.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
		pathsByEntity: map[string][]string{
			"assignments": {"/api/assignments", "/api/workers"},
			"audit_logs":  {"/api/audit"},
			"projects":    {"/api/projects"},
			"positions":   {"/api/positions", "/api/projects"},
			"workers":     {"/api/workers"},
			"vendors":     {"/api/vendors"},
			"customers":   {"/api/customers"},
		},
	}
}

// Middleware serves cached GET responses and captures cacheable ones.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := rc.store.Get(key); found {
			cached := resp.(cachedResponse)
			c.Writer.WriteHeader(cached.status)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			response := cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			}
			rc.store.Set(key, response, rc.ttl)
		}
	}
}

// Invalidate drops cached responses for every entity set a mutation
// reported as changed.
func (rc *ResponseCache) Invalidate(changed ...string) {
	for _, entity := range changed {
		prefixes, ok := rc.pathsByEntity[entity]
		if !ok {
			continue
		}
		for key := range rc.store.Items() {
			for _, prefix := range prefixes {
				if strings.HasPrefix(key, prefix) {
					rc.store.Delete(key)
					break
				}
			}
		}
	}
}
