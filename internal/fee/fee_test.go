package fee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

func TestValidatePercents(t *testing.T) {
	tests := []struct {
		name     string
		feePct   int
		stakePct int
		wantErr  bool
	}{
		{name: "defaults", feePct: 10, stakePct: 20},
		{name: "zero fee and stake", feePct: 0, stakePct: 0},
		{name: "full fee no stake", feePct: 100, stakePct: 0},
		{name: "stake at upper bound", feePct: 0, stakePct: 99},
		{name: "negative fee", feePct: -1, stakePct: 20, wantErr: true},
		{name: "fee above 100", feePct: 150, stakePct: 20, wantErr: true},
		{name: "negative stake", feePct: 10, stakePct: -5, wantErr: true},
		{name: "stake at 100", feePct: 0, stakePct: 100, wantErr: true},
		{name: "combined above 100", feePct: 60, stakePct: 50, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePercents(tt.feePct, tt.stakePct)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		feePct int
		want   int64
	}{
		{name: "exact division", amount: 960, feePct: 10, want: 96},
		{name: "floors remainder", amount: 999, feePct: 10, want: 99},
		{name: "zero fee", amount: 1000, feePct: 0, want: 0},
		{name: "full fee", amount: 1000, feePct: 100, want: 1000},
		{name: "tiny amount floors to zero", amount: 9, feePct: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlatformFee(tt.amount, tt.feePct))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		gross     int64
		stakePct  int
		wantPrice int64
		wantStake int64
	}{
		{name: "twenty percent stake", gross: 1200, stakePct: 20, wantPrice: 960, wantStake: 240},
		{name: "rounding goes to price", gross: 1001, stakePct: 20, wantPrice: 801, wantStake: 200},
		{name: "zero stake", gross: 500, stakePct: 0, wantPrice: 500, wantStake: 0},
		{name: "one unit", gross: 1, stakePct: 20, wantPrice: 1, wantStake: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, stake := Split(tt.gross, tt.stakePct)
			assert.Equal(t, tt.wantPrice, price)
			assert.Equal(t, tt.wantStake, stake)
			assert.Equal(t, tt.gross, price+stake)
		})
	}
}

func booking(gross int64, stakePct, feePct int) *domain.Booking {
	price, stake := Split(gross, stakePct)
	return &domain.Booking{
		ID:          1,
		GrossAmount: gross,
		PriceAmount: price,
		StakeAmount: stake,
		StakePct:    stakePct,
		FeePct:      feePct,
		Status:      domain.BookingPaid,
	}
}

func TestSettleAttended(t *testing.T) {
	b := booking(1200, 20, 10)

	s := Settle(b, domain.OutcomeAttended)

	require.NotNil(t, s.Outcome)
	assert.Equal(t, domain.OutcomeAttended, *s.Outcome)
	assert.Equal(t, int64(96), s.PlatformFee)
	assert.Equal(t, int64(864), s.HostPayout)
	assert.Equal(t, int64(240), s.TravelerPayout)
}

func TestSettleNoShow(t *testing.T) {
	b := booking(1200, 20, 10)

	s := Settle(b, domain.OutcomeNoShow)

	require.NotNil(t, s.Outcome)
	assert.Equal(t, domain.OutcomeNoShow, *s.Outcome)
	assert.Equal(t, int64(96), s.PlatformFee)
	assert.Equal(t, int64(864), s.TravelerPayout)
	assert.Equal(t, int64(240), s.HostPayout)
}

// Payouts plus the fee must always add back up to the held gross,
// whatever the percentages and amounts do to the rounding.
func TestSettleConservesGross(t *testing.T) {
	grosses := []int64{1, 7, 99, 1000, 1200, 999999999}
	percents := []struct{ fee, stake int }{
		{0, 0}, {10, 20}, {3, 7}, {100, 0}, {1, 99}, {50, 50},
	}

	for _, gross := range grosses {
		for _, p := range percents {
			b := booking(gross, p.stake, p.fee)

			for _, outcome := range []domain.Outcome{domain.OutcomeAttended, domain.OutcomeNoShow} {
				s := Settle(b, outcome)
				assert.Equal(t, gross, s.HostPayout+s.TravelerPayout+s.PlatformFee,
					"gross=%d fee=%d stake=%d outcome=%s", gross, p.fee, p.stake, outcome)
				assert.GreaterOrEqual(t, s.HostPayout, int64(0))
				assert.GreaterOrEqual(t, s.TravelerPayout, int64(0))
			}
		}
	}
}

func TestRefund(t *testing.T) {
	b := booking(1200, 20, 10)

	s := Refund(b)

	assert.Nil(t, s.Outcome)
	assert.Equal(t, int64(1200), s.TravelerPayout)
	assert.Zero(t, s.HostPayout)
	assert.Zero(t, s.PlatformFee)
}
