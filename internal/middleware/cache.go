package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/gamezone-floor/internal/config"
)

// cachedResponse is the Redis payload for one cached response.  The
// header travels with the body so a hit replays exactly what the
// handler produced.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// bodyRecorder tees the response body into a buffer while writing it
// through to the client.  Once the buffer would exceed limit the
// recording is abandoned; the response itself is never cut short.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int64
	oversize bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if !r.oversize {
		if r.limit > 0 && int64(r.buf.Len()+len(b)) > r.limit {
			r.oversize = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// cacheKey derives the Redis key from the configured strategy.  Keys
// hash the route shape plus query, so every distinct query string
// gets its own slot under a bounded-length key.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()

	var ident string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		ident = c.Path()
	case "method_route":
		ident = r.Method + " " + c.Path()
	case "method_route_query":
		ident = r.Method + " " + c.Path() + "?" + r.URL.RawQuery
	default: // route_query
		ident = c.Path() + "?" + r.URL.RawQuery
	}

	sum := sha1.Sum([]byte(ident))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// NewRedisCache caches successful responses for the configured
// methods in Redis.  Only list/read endpoints go behind this
// middleware; session mutations must never be cached.  A nil client
// or a disabled config yields a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			key := cacheKey(cfg, c)
			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					return replay(c, cached)
				}
				// Unreadable entry: fall through and overwrite it.
			}

			rec := &bodyRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if rec.status == http.StatusOK && !rec.oversize {
				store(c, rdb, key, rec, ttl)
			}
			return nil
		}
	}
}

// replay writes a cached response back to the client.
func replay(c echo.Context, cached cachedResponse) error {
	h := c.Response().Header()
	for k, vals := range cached.Header {
		// Echo recomputes Content-Length on write.
		if strings.EqualFold(k, "Content-Length") {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cached.Status)
	if len(cached.Body) > 0 {
		_, _ = c.Response().Write(cached.Body)
	}
	return nil
}

// store persists the recorded response.  Write failures are silent:
// the client already has its answer and the next miss retries.
func store(c echo.Context, rdb *redis.Client, key string, rec *bodyRecorder, ttl time.Duration) {
	cached := cachedResponse{
		Status: rec.status,
		Header: make(http.Header, len(c.Response().Header())),
		Body:   rec.buf.Bytes(),
	}
	for k, vals := range c.Response().Header() {
		cached.Header[k] = append([]string(nil), vals...)
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return
	}
	// Detached context: the request may already be done.
	_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
}
