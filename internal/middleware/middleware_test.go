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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/utils"
)

const secret = "mw-secret"

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": UserID(c), "role": Role(c)})
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mint(t *testing.T, user, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, user, role, 5)
	require.NoError(t, err)
	return tok.Token
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	rec := serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")

	rec = serve(e, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")

	rec = serve(e, http.MethodGet, "/me", mint(t, "u1", "customer"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u1","role":"customer"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", whoami, JWTAuth(secret), RequireRole("admin", "manager"))

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", mint(t, "u1", "customer")).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", mint(t, "u1", "manager")).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", mint(t, "u1", "admin")).Code)
}

func rateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip_user_route",
		Prefix:         "rl",
	}
}

func TestTokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.GET("/ping", whoami, NewTokenBucket(rateConfig(), rdb, nil))

	first := serve(e, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)

	blocked := serve(e, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "TOO_MANY_REQUESTS")

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "rl:ip:192.0.2.1:user:anon:route:GET /ping", keys[0])
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	e := echo.New()
	e.GET("/ping", whoami, NewTokenBucket(rateConfig(), rdb, nil))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)

	// disabled limiter never touches redis
	cfg := rateConfig()
	cfg.Enabled = false
	e.GET("/off", whoami, NewTokenBucket(cfg, nil, nil))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/off", "").Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")
	c.Set(CtxUserID, "u9")

	cfg := rateConfig()
	for strategy, want := range map[string]string{
		"ip":         "rl:ip:10.0.0.7",
		"user":       "rl:user:u9",
		"route":      "rl:route:POST /v1/reservations",
		"ip_user":    "rl:ip:10.0.0.7:user:u9",
		"user_route": "rl:user:u9:route:POST /v1/reservations",
		"":           "rl:ip:10.0.0.7:user:u9:route:POST /v1/reservations",
	} {
		cfg.KeyStrategy = strategy
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", whoami)
	e.GET("/boom", func(echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	serve(e, http.MethodGet, "/ok", "")
	rec := serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}
