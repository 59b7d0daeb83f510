package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coop-transport-seating/internal/config"
	"github.com/iliyamo/coop-transport-seating/internal/seating"
	"github.com/iliyamo/coop-transport-seating/internal/utils"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func do(e *echo.Echo, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOperator(t *testing.T) {
	e := echo.New()
	e.Use(Operator("s3cret"))
	e.GET("/who", func(c echo.Context) error {
		return c.String(http.StatusOK, seating.OperatorFrom(c.Request().Context())+"|"+operatorName(c))
	})

	tok, err := utils.NewOperatorToken("s3cret", "guichet-1", "", time.Hour)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/who", map[string]string{"Authorization": "Bearer " + tok.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guichet-1|guichet-1", rec.Body.String())

	rec = do(e, http.MethodGet, "/who", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "|anon", rec.Body.String())

	rec = do(e, http.MethodGet, "/who", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")

	rec = do(e, http.MethodGet, "/who", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOperator_DisabledWithoutSecret(t *testing.T) {
	e := echo.New()
	e.Use(Operator(""))
	e.GET("/who", func(c echo.Context) error { return c.String(http.StatusOK, operatorName(c)) })

	rec := do(e, http.MethodGet, "/who", map[string]string{"Authorization": "Bearer whatever"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anon", rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/missing", func(c echo.Context) error { return echo.ErrNotFound })

	rec := do(e, http.MethodGet, "/ok", map[string]string{echo.HeaderXRequestID: "req-1"})
	assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusNoContent, entry.Data["status"])
	assert.Equal(t, "req-1", entry.Data["request_id"])

	rec = do(e, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestResponseCache(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rdb, _ := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20,
	}, rdb, logger)

	calls := 0
	e := echo.New()
	e.GET("/voitures-parties", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, rc.Middleware())
	e.GET("/voitures-parties-vip", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, rc.Middleware())

	rec := do(e, http.MethodGet, "/voitures-parties", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/voitures-parties", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")

	rec = do(e, http.MethodGet, "/voitures-parties-vip", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":2}`, rec.Body.String())

	require.NoError(t, rc.Purge(context.Background()))
	rec = do(e, http.MethodGet, "/voitures-parties", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":3}`, rec.Body.String())
}

func TestResponseCache_SkipsErrorsAndDisabled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rdb, mr := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache",
	}, rdb, logger)

	e := echo.New()
	e.GET("/boom", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
	}, rc.Middleware())
	do(e, http.MethodGet, "/boom", nil)
	assert.Empty(t, mr.Keys())

	off := NewResponseCache(config.CacheConfig{Enabled: true}, nil, logger)
	assert.NoError(t, off.Purge(context.Background()))
}

func TestRateLimit(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rdb, _ := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: 2 * time.Hour,
		KeyStrategy: "ip_route", Prefix: "rl",
	}
	e := echo.New()
	e.POST("/places", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, RateLimit(cfg, rdb, logger))

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/places", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := do(e, http.MethodPost, "/places", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rdb, mr := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.POST("/places", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, RateLimit(cfg, rdb, logger))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/places", nil).Code)
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/voyages", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/voyages")
	c.Set(OperatorKey, "guichet-2")

	cases := map[string]string{
		"ip":             "rl:ip:10.0.0.7",
		"operator":       "rl:op:guichet-2",
		"route":          "rl:route:POST /voyages",
		"ip_route":       "rl:ip:10.0.0.7:route:POST /voyages",
		"operator_route": "rl:op:guichet-2:route:POST /voyages",
		"":               "rl:ip:10.0.0.7:op:guichet-2:route:POST /voyages",
	}
	for strategy, want := range cases {
		assert.Equal(t, want, rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c), strategy)
	}
}
