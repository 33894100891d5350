package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository/memory"
	"github.com/iliyamo/travel-booking/internal/service"
	"github.com/iliyamo/travel-booking/internal/utils"
)

const secret = "router-secret"

func intp(n int) *int { return &n }

func newApp(t *testing.T, csrf bool) *echo.Echo {
	t.Helper()
	st := memory.New()
	st.AddUser(model.User{ID: "u1", Email: "ana@example.com", Role: model.RoleCustomer})
	st.AddPlace(model.Place{ID: "p1", Name: "Old Town"})
	st.AddRestaurant(model.Restaurant{ID: "r1", PlaceID: "p1", Name: "Bistro"})
	st.AddTable(model.RestaurantTable{ID: "t4", RestaurantID: "r1", TableName: "T4", SeatingCapacity: intp(4), IsAvailable: true})

	return New(Deps{
		Reservations: service.New(st, service.Options{}),
		JWTSecret:    secret,
		CSRFEnabled:  csrf,
	})
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, "u1", role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

type call struct {
	method, path, body, auth string
	cookies                  []*http.Cookie
	csrf                     string
}

func (c call) run(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	if c.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if c.auth != "" {
		req.Header.Set(echo.HeaderAuthorization, c.auth)
	}
	if c.csrf != "" {
		req.Header.Set(CSRFHeader, c.csrf)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const booking = `{"user_id":"u1","item_type":"restaurant_table","item_id":"t4",
	"start_datetime":"2099-05-01T18:00:00Z","end_datetime":"2099-05-01T20:00:00Z","guest_count":2}`

func TestHealthz(t *testing.T) {
	rec := call{method: http.MethodGet, path: "/healthz"}.run(newApp(t, true))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestGuards(t *testing.T) {
	e := newApp(t, false)
	customer, admin := bearer(t, model.RoleCustomer), bearer(t, model.RoleAdmin)

	cases := []struct {
		name string
		call call
		want int
	}{
		{"no token", call{method: http.MethodGet, path: "/v1/reservations/user/u1"}, http.StatusUnauthorized},
		{"customer own list", call{method: http.MethodGet, path: "/v1/reservations/user/u1", auth: customer}, http.StatusOK},
		{"customer list all", call{method: http.MethodGet, path: "/v1/reservations", auth: customer}, http.StatusForbidden},
		{"manager list all", call{method: http.MethodGet, path: "/v1/reservations", auth: bearer(t, model.RoleManager)}, http.StatusOK},
		{"customer reconcile", call{method: http.MethodPost, path: "/v1/admin/tables/reconcile", auth: customer}, http.StatusForbidden},
		{"admin reconcile", call{method: http.MethodPost, path: "/v1/admin/tables/reconcile?dry_run=true", auth: admin}, http.StatusOK},
		{"public availability", call{method: http.MethodGet, path: "/v1/restaurants/r1/tables/available?start=2099-05-01T18:00:00Z&end=2099-05-01T20:00:00Z&guest_count=2"}, http.StatusOK},
		{"create", call{method: http.MethodPost, path: "/v1/reservations", body: booking, auth: customer}, http.StatusCreated},
		{"csrf endpoint disabled", call{method: http.MethodGet, path: "/v1/csrf"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.call.run(e)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCSRFProtectsMutations(t *testing.T) {
	e := newApp(t, true)
	auth := bearer(t, model.RoleCustomer)

	rec := call{method: http.MethodPost, path: "/v1/reservations", body: booking, auth: auth}.run(e)
	assert.NotEqual(t, http.StatusCreated, rec.Code)

	rec = call{method: http.MethodGet, path: "/v1/csrf"}.run(e)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Token string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = call{method: http.MethodPost, path: "/v1/reservations", body: booking, auth: auth, cookies: cookies, csrf: "forged"}.run(e)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call{method: http.MethodPost, path: "/v1/reservations", body: booking, auth: auth, cookies: cookies, csrf: body.Token}.run(e)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// reads need no token
	rec = call{method: http.MethodGet, path: "/v1/reservations/user/u1", auth: auth}.run(e)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitOnV1(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := New(Deps{
		Reservations: service.New(memory.New(), service.Options{}),
		JWTSecret:    secret,
		Redis:        rdb,
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 1, RefillTokens: 1,
			RefillInterval: time.Hour, TTL: 2 * time.Hour,
			Prefix: "rl",
		},
	})

	path := "/v1/restaurants/r1/tables/available?start=2099-05-01T18:00:00Z&end=2099-05-01T20:00:00Z&guest_count=2"
	assert.Equal(t, http.StatusOK, call{method: http.MethodGet, path: path}.run(e).Code)
	assert.Equal(t, http.StatusTooManyRequests, call{method: http.MethodGet, path: path}.run(e).Code)
	// health checks sit outside the limiter
	assert.Equal(t, http.StatusOK, call{method: http.MethodGet, path: "/healthz"}.run(e).Code)
}
