// Package payout lets an account pull funds that were parked as
// internal credit when a settlement push was rejected.
package payout

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	"github.com/tanishkhot/mayhouse-sub002/internal/repository"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
	redisrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/redis"
	"github.com/tanishkhot/mayhouse-sub002/internal/uow"
)

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	gw    *gateway.Gateway
	uow   *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, gw *gateway.Gateway) *Service {
	return &Service{
		store: store,
		cache: cache,
		gw:    gw,
		uow:   uow.NewUoW(store),
	}
}

// Withdraw moves amount of the caller's credit balance back to them.
// The deduction and the pending transfer row commit first; the push
// itself runs only after commit, so a retried or aborted transaction
// never re-sends value. A push the rail rejects puts the amount back on
// the caller's credit balance.
//
// Returns:
//   - string: the rail's transaction reference.
//   - error: payout.ErrInvalidAmount if amount is not positive.
//   - error: payout.ErrInsufficientCredit if the balance is too small.
//   - error: payout.ErrWithdrawalFailed if the push did not go out.
func (s *Service) Withdraw(ctx context.Context, caller domain.Address, amount int64) (string, error) {
	const op = "service.payout.Withdraw"

	if amount <= 0 {
		return "", fmt.Errorf("%s:%w", op, ErrInvalidAmount)
	}

	var recorded []domain.Transfer

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if err := s.store.Credits().With(tx).Deduct(ctx, caller, amount); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return fmt.Errorf("%s:%w", op, ErrInsufficientCredit)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		var err error
		recorded, err = s.store.Transfers().With(tx).RecordBatch(ctx, []domain.Transfer{{
			Party:     domain.PartyWithdrawal,
			Recipient: caller,
			Amount:    amount,
			Method:    domain.TransferPush,
		}})
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCredit(ctx, caller.String())
		})

		return nil
	})
	if err != nil {
		return "", err
	}

	if err := s.gw.Deliver(ctx, recorded, s.store.Credits(), s.store.Transfers()); err != nil {
		return "", fmt.Errorf("%s:%w: %v", op, ErrWithdrawalFailed, err)
	}

	t := recorded[0]
	if t.Method == domain.TransferCredit {
		// Push rejected; the amount is back on the credit balance.
		_ = s.cache.InvalidateCredit(ctx, caller.String())
		return "", fmt.Errorf("%s:%w", op, ErrWithdrawalFailed)
	}

	return t.TxHash, nil
}
