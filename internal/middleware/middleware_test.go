package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/starwars-catalog/internal/config"
	"github.com/iliyamo/starwars-catalog/internal/metrics"
)

func newContext(method, target, path string, params ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)
	if len(params) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(params...)
	}
	return c
}

func TestCacheKeyFrom_DistinguishesPathParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	one := cacheKeyFrom(cfg, "movies", 0, newContext(http.MethodGet, "/movies/1/", "/movies/:id/", "1"))
	two := cacheKeyFrom(cfg, "movies", 0, newContext(http.MethodGet, "/movies/2/", "/movies/:id/", "2"))
	again := cacheKeyFrom(cfg, "movies", 0, newContext(http.MethodGet, "/movies/1/", "/movies/:id/", "1"))

	assert.NotEqual(t, one, two)
	assert.Equal(t, one, again)
	assert.True(t, strings.HasPrefix(one, "cache:movies:g0:"), one)
}

func TestCacheKeyFrom_QueryDependsOnStrategy(t *testing.T) {
	withQuery := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	routeOnly := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	a := newContext(http.MethodGet, "/planets/?name=ant", "/planets/")
	b := newContext(http.MethodGet, "/planets/?name=hoth", "/planets/")

	assert.NotEqual(t, cacheKeyFrom(withQuery, "planets", 0, a), cacheKeyFrom(withQuery, "planets", 0, b))
	assert.Equal(t, cacheKeyFrom(routeOnly, "planets", 0, a), cacheKeyFrom(routeOnly, "planets", 0, b))
}

func TestCacheKeyFrom_IncludesOrigin(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	a := newContext(http.MethodGet, "/planets/", "/planets/")
	a.Request().Host = "a.example"
	b := newContext(http.MethodGet, "/planets/", "/planets/")
	b.Request().Host = "b.example"
	tls := newContext(http.MethodGet, "/planets/", "/planets/")
	tls.Request().Host = "a.example"
	tls.Request().Header.Set(echo.HeaderXForwardedProto, "https")

	keyA := cacheKeyFrom(cfg, "planets", 0, a)
	assert.NotEqual(t, keyA, cacheKeyFrom(cfg, "planets", 0, b))
	assert.NotEqual(t, keyA, cacheKeyFrom(cfg, "planets", 0, tls))
}

func TestCacheKeyFrom_GenerationSeparatesEntries(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	c := newContext(http.MethodGet, "/planets/?name=ant", "/planets/")

	before := cacheKeyFrom(cfg, "planets", 3, c)
	after := cacheKeyFrom(cfg, "planets", 4, c)

	assert.NotEqual(t, before, after)
	assert.True(t, strings.HasPrefix(after, "cache:planets:g4:"), after)
	assert.Equal(t, "cache:planets:gen", generationKey(cfg, "planets"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"msg":"Empty planet list.","planets":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayload_Corrupt(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0})
	assert.False(t, ok)

	// header length points past the end
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99})
	assert.False(t, ok)
}

func TestCaptureWriter_StopsBufferingAtLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))

	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(7), cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestNewRedisCache_DisabledIsPassThrough(t *testing.T) {
	called := false
	h := NewRedisCache(config.CacheConfig{Enabled: true}, nil, "movies")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	c := newContext(http.MethodGet, "/movies/", "/movies/")
	require.NoError(t, h(c))
	assert.True(t, called)
	assert.Empty(t, c.Response().Header().Get("X-Cache"))
}

func TestParseBucketResult(t *testing.T) {
	res, ok := parseBucketResult([]any{int64(0), int64(0), int64(1500)})
	require.True(t, ok)
	assert.False(t, res.allowed)
	assert.Equal(t, int64(0), res.remaining)
	assert.Equal(t, 1500*time.Millisecond, res.retry)

	res, ok = parseBucketResult([]any{int64(1), "59", int64(0)})
	require.True(t, ok)
	assert.True(t, res.allowed)
	assert.Equal(t, int64(59), res.remaining)

	_, ok = parseBucketResult("OK")
	assert.False(t, ok)
	_, ok = parseBucketResult([]any{int64(1)})
	assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
	c := newContext(http.MethodPost, "/planets/3/favorite/", "/planets/:id/favorite/", "3")

	cases := map[string]string{
		"ip":       "rl:ip:10.0.0.7",
		"route":    "rl:route:POST /planets/:id/favorite/",
		"ip_route": "rl:ip:10.0.0.7:route:POST /planets/:id/favorite/",
		"":         "rl:ip:10.0.0.7:route:POST /planets/:id/favorite/",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}
}

func TestNewTokenBucket_DisabledIsPassThrough(t *testing.T) {
	h := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, nil)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	c := newContext(http.MethodGet, "/planets/", "/planets/")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, c.Response().Status)
	assert.Empty(t, c.Response().Header().Get("X-RateLimit-Limit"))
}

func TestMetrics_CountsByRoute(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/:id", "200")
	before := testutil.ToFloat64(counter)

	h := Metrics()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(newContext(http.MethodGet, "/metrics-test/1", "/metrics-test/:id", "1")))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	h := Metrics()(func(c echo.Context) error { return echo.ErrNotFound })
	err := h(newContext(http.MethodGet, "/nowhere", ""))

	assert.ErrorIs(t, err, echo.ErrNotFound)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRequestLogger_LogsFinalStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(func(c echo.Context) error {
		return errors.New("boom")
	})

	c := newContext(http.MethodGet, "/movies/", "/movies/")
	require.NoError(t, h(c))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
	assert.Equal(t, "/movies/", entries[0].ContextMap()["route"])
}
