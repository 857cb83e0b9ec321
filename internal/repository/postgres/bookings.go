package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/repository"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `id, event_run_ref, traveler, host,
	gross_amount, price_amount, stake_amount, stake_pct, fee_pct,
	status, outcome, created_at, settled_at`

// Create inserts a new booking and returns its ledger-assigned ID.
// IDs come from a bigserial, so assignment is monotonic.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) (int64, error) {
	const op = "postgres.BookingRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO bookings(
			event_run_ref, traveler, host,
			gross_amount, price_amount, stake_amount, stake_pct, fee_pct,
			status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		b.EventRunRef, b.Traveler, b.Host,
		b.GrossAmount, b.PriceAmount, b.StakeAmount, b.StakePct, b.FeePct,
		b.Status, b.CreatedAt,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// Get returns a booking snapshot.
//
// Returns:
//   - error: repository.ErrNotFound if no booking has the given ID.
func (r *BookingRepo) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	b, err := r.scanOne(ctx, r.handle(),
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// GetForUpdate locks the booking row for the rest of the transaction.
// Every booking-affecting operation goes through this lock, which is
// what serializes concurrent writes to the same record.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	b, err := r.scanOne(ctx, r.handle(),
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// List returns bookings matching the filter, newest first.
func (r *BookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.List"

	db := r.handle()

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := db.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE ($1::text IS NULL OR traveler = $1)
		   AND ($2::text IS NULL OR host = $2)
		 ORDER BY id DESC
		 LIMIT $3 OFFSET $4`,
		addrOrNil(f.Traveler), addrOrNil(f.Host), limit, f.Offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Finalize writes the terminal status, outcome and settlement timestamp.
// The WHERE clause re-checks the paid status so a row that settled in a
// concurrent transaction is never finalized twice.
//
// Returns:
//   - error: repository.ErrBookingNotPaid if the booking already left the
//     paid status.
func (r *BookingRepo) Finalize(
	ctx context.Context,
	id int64,
	status domain.BookingStatus,
	s *domain.Settlement,
) error {
	const op = "postgres.BookingRepo.Finalize"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE bookings
		 SET status = $2, outcome = $3, settled_at = $4
		 WHERE id = $1 AND status = 'paid'`,
		id, status, s.Outcome, s.SettledAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrBookingNotPaid)
	}

	return nil
}

func (r *BookingRepo) scanOne(ctx context.Context, db DB, sql string, args ...any) (*domain.Booking, error) {
	var b domain.Booking
	if err := scanBooking(db.QueryRow(ctx, sql, args...), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(
		&b.ID, &b.EventRunRef, &b.Traveler, &b.Host,
		&b.GrossAmount, &b.PriceAmount, &b.StakeAmount, &b.StakePct, &b.FeePct,
		&b.Status, &b.Outcome, &b.CreatedAt, &b.SettledAt,
	)
}

func addrOrNil(a *domain.Address) any {
	if a == nil {
		return nil
	}
	return string(*a)
}
