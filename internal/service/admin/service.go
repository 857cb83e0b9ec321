// Package admin implements the owner-only platform configuration
// operations. Every update locks the singleton config row, so bookings
// created concurrently see either the old or the new percentages,
// never a mix — and already-open bookings are untouched either way,
// because records capture their percentages at creation.
package admin

import (
	"context"
	"fmt"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/fee"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/uow"
)

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	uow   *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
		uow:   uow.NewUoW(store),
	}
}

// UpdateWallet changes the platform fee payout destination.
//
// Returns:
//   - error: admin.ErrNotOwner if the caller is not the current owner.
//   - error: admin.ErrZeroAddress if the new wallet is the zero address.
func (s *Service) UpdateWallet(ctx context.Context, caller, wallet domain.Address) error {
	const op = "service.admin.UpdateWallet"

	if wallet.IsZero() {
		return fmt.Errorf("%s:%w", op, ErrZeroAddress)
	}

	return s.update(ctx, op, caller, func(cfg *domain.PlatformConfig) error {
		cfg.Wallet = wallet
		return nil
	})
}

// UpdateFeePct changes the platform fee percentage for future bookings.
//
// Returns:
//   - error: admin.ErrNotOwner if the caller is not the current owner.
//   - error: admin.ErrConfigOutOfRange if the new value is out of range.
func (s *Service) UpdateFeePct(ctx context.Context, caller domain.Address, pct int) error {
	const op = "service.admin.UpdateFeePct"

	return s.update(ctx, op, caller, func(cfg *domain.PlatformConfig) error {
		if err := fee.ValidatePercents(pct, cfg.StakePct); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigOutOfRange, err)
		}
		cfg.FeePct = pct
		return nil
	})
}

// UpdateStakePct changes the stake percentage for future bookings.
//
// Returns:
//   - error: admin.ErrNotOwner if the caller is not the current owner.
//   - error: admin.ErrConfigOutOfRange if the new value is out of range.
func (s *Service) UpdateStakePct(ctx context.Context, caller domain.Address, pct int) error {
	const op = "service.admin.UpdateStakePct"

	return s.update(ctx, op, caller, func(cfg *domain.PlatformConfig) error {
		if err := fee.ValidatePercents(cfg.FeePct, pct); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigOutOfRange, err)
		}
		cfg.StakePct = pct
		return nil
	})
}

// TransferOwnership hands the administrative identity to a new owner.
//
// Returns:
//   - error: admin.ErrNotOwner if the caller is not the current owner.
//   - error: admin.ErrZeroAddress if the new owner is the zero address.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error {
	const op = "service.admin.TransferOwnership"

	if newOwner.IsZero() {
		return fmt.Errorf("%s:%w", op, ErrZeroAddress)
	}

	return s.update(ctx, op, caller, func(cfg *domain.PlatformConfig) error {
		cfg.Owner = newOwner
		return nil
	})
}

func (s *Service) update(
	ctx context.Context,
	op string,
	caller domain.Address,
	mutate func(cfg *domain.PlatformConfig) error,
) error {
	return s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		cfg, err := s.store.Platform().With(tx).GetForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if caller != cfg.Owner {
			return fmt.Errorf("%s:%w", op, ErrNotOwner)
		}

		if err := mutate(cfg); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.store.Platform().With(tx).Update(ctx, cfg); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidatePlatformConfig(ctx)
		})

		return nil
	})
}
