package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

// TransferRepo is the disbursement audit log. One row per payout leg,
// recorded in the same transaction as the settlement it belongs to.
type TransferRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TransferRepo) With(db DB) *TransferRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TransferRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// RecordBatch inserts the transfer rows for one settlement and returns
// them with their assigned IDs, so delivery can mark outcomes on the
// exact rows the transaction recorded.
func (r *TransferRepo) RecordBatch(ctx context.Context, transfers []domain.Transfer) ([]domain.Transfer, error) {
	const op = "postgres.TransferRepo.RecordBatch"

	if len(transfers) == 0 {
		return nil, nil
	}

	db := r.handle()

	batch := &pgx.Batch{}
	for _, t := range transfers {
		batch.Queue(
			`INSERT INTO transfer_log(booking_id, party, recipient, amount, method, tx_hash, confirmed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			bookingIDOrNil(t.BookingID), t.Party, t.Recipient, t.Amount, t.Method, t.TxHash, t.Confirmed,
		)
	}

	out := make([]domain.Transfer, len(transfers))
	copy(out, transfers)

	br := db.SendBatch(ctx, batch)
	for i := range out {
		if err := br.QueryRow().Scan(&out[i].ID); err != nil {
			_ = br.Close()
			return nil, wrapDBErr(op, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// MarkPushed stores the rail's transaction reference on a delivered leg.
func (r *TransferRepo) MarkPushed(ctx context.Context, id int64, txHash string) error {
	const op = "postgres.TransferRepo.MarkPushed"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE transfer_log SET tx_hash = $2 WHERE id = $1`,
		id, txHash,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// MarkCredited flags a leg whose push was rejected and whose amount was
// parked as internal credit instead.
func (r *TransferRepo) MarkCredited(ctx context.Context, id int64) error {
	const op = "postgres.TransferRepo.MarkCredited"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE transfer_log SET method = 'credit', confirmed = TRUE WHERE id = $1`,
		id,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ListUndelivered returns recorded legs that have not been executed yet.
// Fresh rows are skipped: the committing request normally delivers its
// own legs right after commit, so the sweep only picks up stragglers.
func (r *TransferRepo) ListUndelivered(ctx context.Context, limit int) ([]domain.Transfer, error) {
	const op = "postgres.TransferRepo.ListUndelivered"

	if limit <= 0 {
		limit = 100
	}

	return r.list(ctx, op,
		`SELECT id, booking_id, party, recipient, amount, method, tx_hash, confirmed, created_at
		 FROM transfer_log
		 WHERE method = 'push' AND tx_hash = '' AND NOT confirmed
		   AND created_at < now() - interval '2 minutes'
		 ORDER BY id
		 LIMIT $1`,
		limit,
	)
}

// Withdrawal rows are not tied to a booking.
func bookingIDOrNil(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// ListUnconfirmed returns executed pushes whose transactions have not
// been confirmed on the rail yet.
func (r *TransferRepo) ListUnconfirmed(ctx context.Context, limit int) ([]domain.Transfer, error) {
	const op = "postgres.TransferRepo.ListUnconfirmed"

	if limit <= 0 {
		limit = 100
	}

	return r.list(ctx, op,
		`SELECT id, booking_id, party, recipient, amount, method, tx_hash, confirmed, created_at
		 FROM transfer_log
		 WHERE method = 'push' AND tx_hash <> '' AND NOT confirmed
		 ORDER BY id
		 LIMIT $1`,
		limit,
	)
}

func (r *TransferRepo) list(ctx context.Context, op, sql string, args ...any) ([]domain.Transfer, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Transfer
	for rows.Next() {
		var (
			t         domain.Transfer
			bookingID *int64
		)
		if err := rows.Scan(
			&t.ID, &bookingID, &t.Party, &t.Recipient,
			&t.Amount, &t.Method, &t.TxHash, &t.Confirmed, &t.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if bookingID != nil {
			t.BookingID = *bookingID
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// MarkConfirmed flags a pushed transfer as confirmed on the rail.
func (r *TransferRepo) MarkConfirmed(ctx context.Context, id int64) error {
	const op = "postgres.TransferRepo.MarkConfirmed"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`UPDATE transfer_log SET confirmed = TRUE WHERE id = $1`,
		id,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
