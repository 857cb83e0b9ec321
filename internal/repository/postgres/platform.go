package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

// PlatformRepo manages the singleton platform_config row. Writers lock
// the row, so a booking created concurrently with a config change sees
// one consistent snapshot of the percentages.
type PlatformRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PlatformRepo) With(db DB) *PlatformRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PlatformRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const platformColumns = `owner_addr, wallet_addr, fee_pct, stake_pct, version, updated_at`

// Seed inserts the bootstrap config if no row exists yet. Safe to call
// on every startup.
func (r *PlatformRepo) Seed(ctx context.Context, cfg *domain.PlatformConfig) error {
	const op = "postgres.PlatformRepo.Seed"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO platform_config(singleton, owner_addr, wallet_addr, fee_pct, stake_pct, version)
		 VALUES (TRUE, $1, $2, $3, $4, 1)
		 ON CONFLICT (singleton) DO NOTHING`,
		cfg.Owner, cfg.Wallet, cfg.FeePct, cfg.StakePct,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PlatformRepo) Get(ctx context.Context) (*domain.PlatformConfig, error) {
	const op = "postgres.PlatformRepo.Get"

	return r.get(ctx, op, `SELECT `+platformColumns+` FROM platform_config WHERE singleton`)
}

// GetForUpdate locks the config row for the rest of the transaction.
func (r *PlatformRepo) GetForUpdate(ctx context.Context) (*domain.PlatformConfig, error) {
	const op = "postgres.PlatformRepo.GetForUpdate"

	return r.get(ctx, op, `SELECT `+platformColumns+` FROM platform_config WHERE singleton FOR UPDATE`)
}

// Update writes the mutable fields and bumps the version.
func (r *PlatformRepo) Update(ctx context.Context, cfg *domain.PlatformConfig) error {
	const op = "postgres.PlatformRepo.Update"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE platform_config
		 SET owner_addr = $1, wallet_addr = $2, fee_pct = $3, stake_pct = $4,
		     version = version + 1, updated_at = now()
		 WHERE singleton`,
		cfg.Owner, cfg.Wallet, cfg.FeePct, cfg.StakePct,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PlatformRepo) get(ctx context.Context, op, sql string) (*domain.PlatformConfig, error) {
	db := r.handle()

	var cfg domain.PlatformConfig
	if err := db.QueryRow(ctx, sql).Scan(
		&cfg.Owner, &cfg.Wallet, &cfg.FeePct, &cfg.StakePct, &cfg.Version, &cfg.UpdatedAt,
	); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &cfg, nil
}
