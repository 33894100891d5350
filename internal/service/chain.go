package service

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/repository"
)

// Options selects the optional layers wrapped around ReservationGeneric.
// A nil Redis disables caching and a nil Publisher disables events.
type Options struct {
	Redis       *redis.Client
	CacheTTL    time.Duration
	CachePrefix string
	Publisher   EventPublisher
	Log         *zap.Logger
}

// New builds the reservation engine: generic core, then caching, then
// event publishing, with logging outermost.
func New(store repository.Store, o Options) Reservations {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	var r Reservations = NewReservationGeneric(store)
	if o.Redis != nil {
		prefix := o.CachePrefix
		if prefix == "" {
			prefix = "cache"
		}
		r = &ReservationCaching{Reservations: r, Redis: o.Redis, TTL: o.CacheTTL, Prefix: prefix, Log: log}
	}
	if o.Publisher != nil {
		r = &ReservationPublishing{Reservations: r, Publisher: o.Publisher, Log: log}
	}
	return &ReservationLogging{Reservations: r, Log: log}
}
