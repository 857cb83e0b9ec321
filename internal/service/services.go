package service

import (
	"github.com/tanishkhot/mayhouse-sub002/internal/event"
	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/admin"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/booking"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/payout"
	"github.com/tanishkhot/mayhouse-sub002/internal/service/query"
)

type Services struct {
	Booking *booking.Service
	Query   *query.Service
	Admin   *admin.Service
	Payout  *payout.Service
}

type Config struct {
	Query query.Config
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	events *event.Publisher,
	limiter *redisrepo.SlidingWindowLimiter,
	gw *gateway.Gateway,
	cfg Config,
) *Services {
	return &Services{
		Booking: booking.New(store, cache, events, limiter, gw),
		Query:   query.New(store, cache, cfg.Query),
		Admin:   admin.New(store, cache),
		Payout:  payout.New(store, cache, gw),
	}
}
