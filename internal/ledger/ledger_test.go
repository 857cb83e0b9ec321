package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

const (
	traveler = domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	host     = domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	stranger = domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")
)

func platformCfg() *domain.PlatformConfig {
	return &domain.PlatformConfig{
		Owner:    "0xdddddddddddddddddddddddddddddddddddddddd",
		Wallet:   "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee",
		FeePct:   10,
		StakePct: 20,
	}
}

func TestOpen(t *testing.T) {
	now := time.Now()

	b, err := Open("run-42", traveler, host, 1200, platformCfg(), now)
	require.NoError(t, err)

	assert.Equal(t, "run-42", b.EventRunRef)
	assert.Equal(t, domain.BookingPaid, b.Status)
	assert.Equal(t, int64(1200), b.GrossAmount)
	assert.Equal(t, int64(960), b.PriceAmount)
	assert.Equal(t, int64(240), b.StakeAmount)
	assert.Equal(t, now, b.CreatedAt)
	assert.Nil(t, b.Outcome)
}

// The percentages in effect at creation are written onto the record so
// later config changes never touch an open booking.
func TestOpenSnapshotsPercents(t *testing.T) {
	cfg := platformCfg()

	b, err := Open("run-42", traveler, host, 1200, cfg, time.Now())
	require.NoError(t, err)

	cfg.FeePct = 50
	cfg.StakePct = 5

	assert.Equal(t, 10, b.FeePct)
	assert.Equal(t, 20, b.StakePct)
}

func TestOpenRejectsNonPositiveValue(t *testing.T) {
	for _, value := range []int64{0, -1, -1200} {
		_, err := Open("run-42", traveler, host, value, platformCfg(), time.Now())
		assert.ErrorIs(t, err, ErrInvalidAmount, "value=%d", value)
	}
}

func TestOpenRejectsSelfBooking(t *testing.T) {
	_, err := Open("run-42", host, host, 1200, platformCfg(), time.Now())
	assert.ErrorIs(t, err, ErrSelfBooking)
}

func paidBooking(t *testing.T) *domain.Booking {
	t.Helper()

	b, err := Open("run-42", traveler, host, 1200, platformCfg(), time.Now())
	require.NoError(t, err)
	b.ID = 7
	return b
}

func TestReportOutcomeAttended(t *testing.T) {
	b := paidBooking(t)
	now := time.Now()

	s, err := ReportOutcome(b, host, domain.OutcomeAttended, now)
	require.NoError(t, err)

	assert.Equal(t, int64(7), s.BookingID)
	assert.Equal(t, int64(96), s.PlatformFee)
	assert.Equal(t, int64(864), s.HostPayout)
	assert.Equal(t, int64(240), s.TravelerPayout)
	assert.Equal(t, now, s.SettledAt)
}

func TestReportOutcomeNoShow(t *testing.T) {
	b := paidBooking(t)

	s, err := ReportOutcome(b, host, domain.OutcomeNoShow, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(864), s.TravelerPayout)
	assert.Equal(t, int64(240), s.HostPayout)
}

func TestReportOutcomeAuthorization(t *testing.T) {
	for _, caller := range []domain.Address{traveler, stranger} {
		b := paidBooking(t)

		_, err := ReportOutcome(b, caller, domain.OutcomeAttended, time.Now())
		assert.ErrorIs(t, err, ErrUnauthorized, "caller=%s", caller)
	}
}

func TestReportOutcomeRejectsTerminalStatus(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingSettled, domain.BookingCancelled} {
		b := paidBooking(t)
		b.Status = status

		_, err := ReportOutcome(b, host, domain.OutcomeAttended, time.Now())
		assert.ErrorIs(t, err, ErrInvalidState, "status=%s", status)
	}
}

func TestCancelRefundsGross(t *testing.T) {
	b := paidBooking(t)
	now := time.Now()

	s, err := Cancel(b, traveler, now)
	require.NoError(t, err)

	assert.Equal(t, int64(1200), s.TravelerPayout)
	assert.Zero(t, s.HostPayout)
	assert.Zero(t, s.PlatformFee)
	assert.Nil(t, s.Outcome)
	assert.Equal(t, now, s.SettledAt)
}

func TestCancelAuthorization(t *testing.T) {
	for _, caller := range []domain.Address{host, stranger} {
		b := paidBooking(t)

		_, err := Cancel(b, caller, time.Now())
		assert.ErrorIs(t, err, ErrUnauthorized, "caller=%s", caller)
	}
}

func TestCancelRejectsTerminalStatus(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingSettled, domain.BookingCancelled} {
		b := paidBooking(t)
		b.Status = status

		_, err := Cancel(b, traveler, time.Now())
		assert.ErrorIs(t, err, ErrInvalidState, "status=%s", status)
	}
}
