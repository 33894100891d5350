// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
)

// CSRFHeader carries the token issued by GET /v1/csrf.
const CSRFHeader = "X-CSRF-TOKEN"

// Deps are the collaborators the routes need.  Redis and DB may be nil.
type Deps struct {
	Reservations service.Reservations
	DB           handler.Pinger
	Redis        *redis.Client
	JWTSecret    string
	CSRFEnabled  bool
	RateLimit    config.RateLimitConfig
	Log          *zap.Logger
}

// New returns an Echo instance with the global middleware and every
// route registered.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes registers the health check and the /v1 API.
//
//	GET    /healthz
//	GET    /v1/csrf
//	GET    /v1/restaurants/:id/tables/available
//	GET    /v1/reservations                (admin, manager)
//	GET    /v1/reservations/user/:userId
//	GET    /v1/reservations/:id
//	POST   /v1/reservations
//	PUT    /v1/reservations/:id
//	DELETE /v1/reservations/:id
//	POST   /v1/admin/tables/reconcile      (admin)
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))

	v1 := e.Group("/v1", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	if d.CSRFEnabled {
		v1.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
			TokenLookup:    "header:" + CSRFHeader,
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: http.SameSiteStrictMode,
		}))
	}
	v1.GET("/csrf", handler.CSRFToken)

	h := handler.NewReservationHandler(d.Reservations)
	v1.GET("/restaurants/:id/tables/available", h.AvailableTables)

	res := v1.Group("/reservations", middleware.JWTAuth(d.JWTSecret))
	res.GET("", h.List, middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	res.GET("/user/:userId", h.ListByUser)
	res.GET("/:id", h.Get)
	res.POST("", h.Create)
	res.PUT("/:id", h.Update)
	res.DELETE("/:id", h.Delete)

	admin := v1.Group("/admin", middleware.JWTAuth(d.JWTSecret), middleware.RequireRole(model.RoleAdmin))
	admin.POST("/tables/reconcile", h.Reconcile)
}
