// Package fee holds the escrow split arithmetic. Everything here is pure
// integer math on smallest-unit amounts: the fee is computed first with
// floor division and the remainder goes to the payee, so the platform
// never gains from rounding.
package fee

import (
	"fmt"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

// ValidatePercents checks a fee/stake percentage pair. Each must be in
// [0,100], the stake must stay below 100 so a booking always carries a
// non-zero price portion, and the pair must not exceed 100 combined.
func ValidatePercents(feePct, stakePct int) error {
	if feePct < 0 || feePct > 100 {
		return fmt.Errorf("platform fee percentage %d out of range [0,100]", feePct)
	}
	if stakePct < 0 || stakePct >= 100 {
		return fmt.Errorf("stake percentage %d out of range [0,100)", stakePct)
	}
	if feePct+stakePct > 100 {
		return fmt.Errorf("fee %d%% + stake %d%% exceeds 100%%", feePct, stakePct)
	}
	return nil
}

// PlatformFee returns floor(amount * feePct / 100).
func PlatformFee(amount int64, feePct int) int64 {
	return amount * int64(feePct) / 100
}

// Split divides a gross amount into price and stake portions using the
// stake percentage. The stake is floored; the remainder stays in the
// price portion, so price + stake == gross exactly.
func Split(gross int64, stakePct int) (price, stake int64) {
	stake = gross * int64(stakePct) / 100
	return gross - stake, stake
}

// Settle computes the disbursement for an outcome report against a paid
// booking. The platform fee is charged on the price portion regardless
// of outcome; the stake goes back to the traveler on attendance and is
// forfeited to the host on a no-show, while the price itself follows
// the party that earned it.
func Settle(b *domain.Booking, outcome domain.Outcome) domain.Settlement {
	platformFee := PlatformFee(b.PriceAmount, b.FeePct)
	net := b.PriceAmount - platformFee

	s := domain.Settlement{
		BookingID:   b.ID,
		PlatformFee: platformFee,
	}
	o := outcome
	s.Outcome = &o

	switch outcome {
	case domain.OutcomeAttended:
		s.HostPayout = net
		s.TravelerPayout = b.StakeAmount
	case domain.OutcomeNoShow:
		s.TravelerPayout = net
		s.HostPayout = b.StakeAmount
	}

	return s
}

// Refund is the disbursement for a pre-settlement cancellation: the full
// gross amount back to the traveler, no fee charged.
func Refund(b *domain.Booking) domain.Settlement {
	return domain.Settlement{
		BookingID:      b.ID,
		TravelerPayout: b.GrossAmount,
	}
}
