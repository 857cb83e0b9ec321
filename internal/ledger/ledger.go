// Package ledger holds the booking state machine: who may do what to a
// booking record, in which status, and what disbursement results. The
// functions here are pure; persistence and fund movement live in the
// service and gateway layers.
package ledger

import (
	"fmt"
	"time"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	"github.com/tanishkhot/mayhouse-sub002/internal/fee"
)

// Open builds a new booking record in the paid status. The incoming
// value is split into price and stake using the percentages in effect
// right now; the split is captured on the record and never recomputed.
func Open(
	eventRunRef string,
	traveler, host domain.Address,
	value int64,
	cfg *domain.PlatformConfig,
	now time.Time,
) (*domain.Booking, error) {
	if value <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, value)
	}
	if traveler == host {
		return nil, ErrSelfBooking
	}

	price, stake := fee.Split(value, cfg.StakePct)

	return &domain.Booking{
		EventRunRef: eventRunRef,
		Traveler:    traveler,
		Host:        host,
		GrossAmount: value,
		PriceAmount: price,
		StakeAmount: stake,
		StakePct:    cfg.StakePct,
		FeePct:      cfg.FeePct,
		Status:      domain.BookingPaid,
		CreatedAt:   now,
	}, nil
}

// ReportOutcome validates a host's attendance report and returns the
// resulting settlement. Only the record's host may report, and only
// while the booking is still paid. The returned settlement's payouts
// sum to the booking's gross amount exactly.
func ReportOutcome(
	b *domain.Booking,
	caller domain.Address,
	outcome domain.Outcome,
	now time.Time,
) (*domain.Settlement, error) {
	if caller != b.Host {
		return nil, fmt.Errorf("%w: only the host may report the outcome", ErrUnauthorized)
	}
	if b.Status != domain.BookingPaid {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, b.Status)
	}

	s := fee.Settle(b, outcome)
	s.SettledAt = now
	return &s, nil
}

// Cancel validates a traveler's pre-settlement cancellation and returns
// the full refund. Only the record's traveler may cancel, and only
// while the booking is still paid; no fee is charged.
func Cancel(b *domain.Booking, caller domain.Address, now time.Time) (*domain.Settlement, error) {
	if caller != b.Traveler {
		return nil, fmt.Errorf("%w: only the traveler may cancel", ErrUnauthorized)
	}
	if b.Status != domain.BookingPaid {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, b.Status)
	}

	s := fee.Refund(b)
	s.SettledAt = now
	return &s, nil
}
