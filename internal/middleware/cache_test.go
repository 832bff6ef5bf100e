package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gamezone-floor/internal/config"
)

func cacheTestSetup(t *testing.T) (*echo.Echo, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return echo.New(), rdb, mr
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestCacheMissThenHit(t *testing.T) {
	e, rdb, _ := cacheTestSetup(t)

	calls := 0
	h := NewRedisCache(testCacheConfig(), rdb)(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]any{"sessions": calls})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions/active", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/sessions/active")
		require.NoError(t, h(c))
		return rec
	}

	first := do()
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	second := do()
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls, "handler not re-invoked on a hit")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestCacheSkipsUncachedMethods(t *testing.T) {
	e, rdb, _ := cacheTestSetup(t)

	calls := 0
	h := NewRedisCache(testCacheConfig(), rdb)(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/sessions")
		require.NoError(t, h(c))
	}
	assert.Equal(t, 2, calls)
}

func TestCacheExpires(t *testing.T) {
	e, rdb, mr := cacheTestSetup(t)

	calls := 0
	h := NewRedisCache(testCacheConfig(), rdb)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})

	do := func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/devices/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/devices/availability")
		require.NoError(t, h(c))
	}

	do()
	mr.FastForward(time.Minute)
	do()
	assert.Equal(t, 2, calls, "entry expired after TTL")
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	e, _, _ := cacheTestSetup(t)

	cfg := testCacheConfig()
	cfg.Enabled = false
	calls := 0
	h := NewRedisCache(cfg, nil)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
