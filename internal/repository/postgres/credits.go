package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/repository"
)

// CreditRepo holds internal balances for recipients whose direct payout
// was rejected. Funds parked here are claimed later via withdrawal.
type CreditRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CreditRepo) With(db DB) *CreditRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CreditRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Add credits the address with the given amount.
func (r *CreditRepo) Add(ctx context.Context, addr domain.Address, amount int64) error {
	const op = "postgres.CreditRepo.Add"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO credits(address, balance)
		 VALUES ($1, $2)
		 ON CONFLICT (address) DO UPDATE
		 SET balance = credits.balance + EXCLUDED.balance, updated_at = now()`,
		addr, amount,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Balance returns the withdrawable balance for the address. A missing
// row reads as zero.
func (r *CreditRepo) Balance(ctx context.Context, addr domain.Address) (int64, error) {
	const op = "postgres.CreditRepo.Balance"

	db := r.handle()

	var balance int64
	err := db.QueryRow(ctx,
		`SELECT COALESCE(
			(SELECT balance FROM credits WHERE address = $1), 0)`,
		addr,
	).Scan(&balance)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return balance, nil
}

// Deduct removes the amount from the address's balance.
//
// Returns:
//   - error: repository.ErrInsufficientBalance if the balance does not
//     cover the amount.
func (r *CreditRepo) Deduct(ctx context.Context, addr domain.Address, amount int64) error {
	const op = "postgres.CreditRepo.Deduct"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE credits
		 SET balance = balance - $2, updated_at = now()
		 WHERE address = $1 AND balance >= $2`,
		addr, amount,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrInsufficientBalance)
	}

	return nil
}
