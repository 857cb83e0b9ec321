package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	redisx "github.com/tanishkhot/mayhouse-sub002/internal/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/repository"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
)

type Config struct {
	BookingTTL time.Duration
	ConfigTTL  time.Duration
}

// Service serves the read side: booking snapshots, listings, the
// platform config view and credit balances. Reads are open to anyone.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.BookingTTL <= 0 {
		cfg.BookingTTL = 15 * time.Second
	}
	if cfg.ConfigTTL <= 0 {
		cfg.ConfigTTL = 60 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetBooking returns a booking snapshot.
//
// Returns:
//   - error: query.ErrBookingNotFound if no booking has the given ID.
func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	const op = "service.query.GetBooking"

	b, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyBooking(id), s.cfg.BookingTTL,
		func(ctx context.Context) (*domain.Booking, error) {
			return s.store.Bookings().Get(ctx, id)
		})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// ListBookings returns bookings filtered by traveler and/or host.
func (s *Service) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	const op = "service.query.ListBookings"

	bookings, err := s.store.Bookings().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return bookings, nil
}

// PlatformConfig returns the current platform configuration.
func (s *Service) PlatformConfig(ctx context.Context) (*domain.PlatformConfig, error) {
	const op = "service.query.PlatformConfig"

	cfg, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyPlatformConfig(), s.cfg.ConfigTTL,
		func(ctx context.Context) (*domain.PlatformConfig, error) {
			return s.store.Platform().Get(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return cfg, nil
}

// CreditBalance returns the withdrawable fallback credit for an account.
func (s *Service) CreditBalance(ctx context.Context, addr domain.Address) (int64, error) {
	const op = "service.query.CreditBalance"

	balance, err := s.store.Credits().Balance(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return balance, nil
}
