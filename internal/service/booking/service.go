package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/event"
	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	"github.com/tanishkhot/mayhouse-sub002/internal/ledger"
	"github.com/tanishkhot/mayhouse-sub002/internal/repository"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/uow"
)

type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	events  *event.Publisher
	limiter *redisrepo.SlidingWindowLimiter
	gw      *gateway.Gateway
	uow     *uow.UoW
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	events *event.Publisher,
	limiter *redisrepo.SlidingWindowLimiter,
	gw *gateway.Gateway,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		events:  events,
		limiter: limiter,
		gw:      gw,
		uow:     uow.NewUoW(store),
	}
}

// Create opens a booking funded with value (price + stake) for an
// off-chain event run. The split percentages are read and captured in
// the same transaction, so a concurrent config change can never produce
// a mixed snapshot.
//
// Returns:
//   - *domain.Booking: the opened record, in paid status.
//   - error: ledger.ErrInvalidAmount if value is not positive.
//   - error: ledger.ErrSelfBooking if the traveler is the host.
func (s *Service) Create(
	ctx context.Context,
	eventRunRef string,
	traveler, host domain.Address,
	value int64,
	rlKey string,
) (*domain.Booking, error) {
	const op = "service.booking.Create"

	if eventRunRef == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrEmptyEventRun)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	var b *domain.Booking

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		cfg, err := s.store.Platform().With(tx).Get(ctx)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		b, err = ledger.Open(eventRunRef, traveler, host, value, cfg, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		id, err := s.store.Bookings().With(tx).Create(ctx, b)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		b.ID = id

		after(func(ctx context.Context) {
			s.events.BookingCreated(b)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// MarkAttended settles the booking on the host's attended report. The
// host receives the price minus the platform fee, the platform its fee,
// and the traveler the full stake back.
func (s *Service) MarkAttended(ctx context.Context, id int64, caller domain.Address) (*domain.Settlement, error) {
	return s.reportOutcome(ctx, "service.booking.MarkAttended", id, caller, domain.OutcomeAttended)
}

// MarkNoShow settles the booking on the host's no-show report. The
// stake is forfeited to the host, the price (minus the platform fee,
// which is charged regardless of outcome) goes back to the traveler.
func (s *Service) MarkNoShow(ctx context.Context, id int64, caller domain.Address) (*domain.Settlement, error) {
	return s.reportOutcome(ctx, "service.booking.MarkNoShow", id, caller, domain.OutcomeNoShow)
}

func (s *Service) reportOutcome(
	ctx context.Context,
	op string,
	id int64,
	caller domain.Address,
	outcome domain.Outcome,
) (*domain.Settlement, error) {
	var settlement *domain.Settlement

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		b, err := s.store.Bookings().With(tx).GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		settlement, err = ledger.ReportOutcome(b, caller, outcome, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.disburseAndFinalize(ctx, tx, b, settlement, domain.BookingSettled, after); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateBooking(ctx, id)
			s.events.BookingSettled(settlement)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return settlement, nil
}

// Cancel refunds the full gross amount to the traveler before any
// outcome report. No fee is charged.
func (s *Service) Cancel(ctx context.Context, id int64, caller domain.Address) (*domain.Settlement, error) {
	const op = "service.booking.Cancel"

	var settlement *domain.Settlement

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		b, err := s.store.Bookings().With(tx).GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		settlement, err = ledger.Cancel(b, caller, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.disburseAndFinalize(ctx, tx, b, settlement, domain.BookingCancelled, after); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateBooking(ctx, id)
			s.events.BookingCancelled(settlement)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return settlement, nil
}

// disburseAndFinalize writes the terminal status and records the
// disbursement plan on the booking's transaction, then schedules the
// actual value movement for after commit. Pushes are irreversible, so
// nothing leaves the operator account while the transaction can still
// abort or be retried; legs the hook cannot deliver stay pending in the
// transfer log and are retried by the background sweep.
func (s *Service) disburseAndFinalize(
	ctx context.Context,
	tx postgresrepo.DB,
	b *domain.Booking,
	settlement *domain.Settlement,
	status domain.BookingStatus,
	after func(uow.AfterCommit),
) error {
	cfg, err := s.store.Platform().With(tx).Get(ctx)
	if err != nil {
		return err
	}

	plan := s.gw.Plan(settlement, cfg.Wallet, b.Host, b.Traveler)

	if err := s.store.Bookings().With(tx).Finalize(ctx, b.ID, status, settlement); err != nil {
		return err
	}

	recorded, err := s.store.Transfers().With(tx).RecordBatch(ctx, plan)
	if err != nil {
		return err
	}

	after(func(ctx context.Context) {
		_ = s.gw.Deliver(ctx, recorded, s.store.Credits(), s.store.Transfers())
	})

	return nil
}
