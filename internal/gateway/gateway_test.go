package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

const (
	wallet   = domain.Address("0x1111111111111111111111111111111111111111")
	host     = domain.Address("0x2222222222222222222222222222222222222222")
	traveler = domain.Address("0x3333333333333333333333333333333333333333")
)

type fakeTransferer struct {
	pushed []domain.Address
	reject map[domain.Address]error
}

func (f *fakeTransferer) Push(_ context.Context, to domain.Address, _ int64) (string, error) {
	if err := f.reject[to]; err != nil {
		return "", err
	}
	f.pushed = append(f.pushed, to)
	return fmt.Sprintf("0xhash%d", len(f.pushed)), nil
}

type fakeSink struct {
	credited map[domain.Address]int64
	err      error
}

func (f *fakeSink) Add(_ context.Context, to domain.Address, amount int64) error {
	if f.err != nil {
		return f.err
	}
	if f.credited == nil {
		f.credited = map[domain.Address]int64{}
	}
	f.credited[to] += amount
	return nil
}

type fakeLog struct {
	pushed   map[int64]string
	credited map[int64]bool
}

func (f *fakeLog) MarkPushed(_ context.Context, id int64, txHash string) error {
	if f.pushed == nil {
		f.pushed = map[int64]string{}
	}
	f.pushed[id] = txHash
	return nil
}

func (f *fakeLog) MarkCredited(_ context.Context, id int64) error {
	if f.credited == nil {
		f.credited = map[int64]bool{}
	}
	f.credited[id] = true
	return nil
}

func newTestGateway(tr Transferer) *Gateway {
	return New(tr, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func settlement() *domain.Settlement {
	return &domain.Settlement{
		BookingID:      7,
		PlatformFee:    96,
		HostPayout:     864,
		TravelerPayout: 240,
	}
}

// recordedPlan numbers the legs the way the transfer log would after the
// settlement transaction inserted them.
func recordedPlan(gw *Gateway) []domain.Transfer {
	plan := gw.Plan(settlement(), wallet, host, traveler)
	for i := range plan {
		plan[i].ID = int64(i + 1)
	}
	return plan
}

func TestPlanOrderAndAmounts(t *testing.T) {
	gw := newTestGateway(&fakeTransferer{})

	plan := gw.Plan(settlement(), wallet, host, traveler)

	require.Len(t, plan, 3)
	assert.Equal(t, domain.PartyPlatform, plan[0].Party)
	assert.Equal(t, int64(96), plan[0].Amount)
	assert.Equal(t, domain.PartyHost, plan[1].Party)
	assert.Equal(t, int64(864), plan[1].Amount)
	assert.Equal(t, domain.PartyTraveler, plan[2].Party)
	assert.Equal(t, int64(240), plan[2].Amount)

	for _, transfer := range plan {
		assert.Equal(t, int64(7), transfer.BookingID)
		assert.Equal(t, domain.TransferPush, transfer.Method)
		assert.Empty(t, transfer.TxHash)
		assert.False(t, transfer.Confirmed)
	}
}

func TestPlanSkipsZeroLegs(t *testing.T) {
	gw := newTestGateway(&fakeTransferer{})

	plan := gw.Plan(&domain.Settlement{BookingID: 7, TravelerPayout: 1200}, wallet, host, traveler)

	require.Len(t, plan, 1)
	assert.Equal(t, domain.PartyTraveler, plan[0].Party)
}

// Planning must not touch the rail: the settlement transaction records
// the plan and may still abort or retry without having moved value.
func TestPlanMovesNoValue(t *testing.T) {
	tr := &fakeTransferer{}
	gw := newTestGateway(tr)

	gw.Plan(settlement(), wallet, host, traveler)

	assert.Empty(t, tr.pushed)
}

func TestDeliverPushesAndMarks(t *testing.T) {
	tr := &fakeTransferer{}
	gw := newTestGateway(tr)
	log := &fakeLog{}

	transfers := recordedPlan(gw)
	err := gw.Deliver(context.Background(), transfers, &fakeSink{}, log)
	require.NoError(t, err)

	assert.Equal(t, []domain.Address{wallet, host, traveler}, tr.pushed)
	assert.Len(t, log.pushed, 3)
	assert.Empty(t, log.credited)

	for _, transfer := range transfers {
		assert.Equal(t, domain.TransferPush, transfer.Method)
		assert.NotEmpty(t, transfer.TxHash)
		assert.Equal(t, log.pushed[transfer.ID], transfer.TxHash)
	}
}

func TestDeliverFallsBackToCredit(t *testing.T) {
	tr := &fakeTransferer{reject: map[domain.Address]error{host: errors.New("rejected")}}
	gw := newTestGateway(tr)
	sink := &fakeSink{}
	log := &fakeLog{}

	transfers := recordedPlan(gw)
	err := gw.Deliver(context.Background(), transfers, sink, log)
	require.NoError(t, err)

	assert.Equal(t, domain.TransferCredit, transfers[1].Method)
	assert.True(t, transfers[1].Confirmed)
	assert.Empty(t, transfers[1].TxHash)
	assert.Equal(t, int64(864), sink.credited[host])
	assert.True(t, log.credited[transfers[1].ID])

	// Other legs still went out by push.
	assert.Equal(t, []domain.Address{wallet, traveler}, tr.pushed)
}

// A leg that fails both push and credit stays pending while earlier
// legs keep their recorded outcomes. There is no transaction to roll
// back at delivery time, so value already pushed is never forgotten and
// the failed leg alone is retried.
func TestDeliverContinuesPastFailedLeg(t *testing.T) {
	tr := &fakeTransferer{reject: map[domain.Address]error{traveler: errors.New("rejected")}}
	gw := newTestGateway(tr)
	sink := &fakeSink{err: errors.New("sink down")}
	log := &fakeLog{}

	transfers := recordedPlan(gw)
	err := gw.Deliver(context.Background(), transfers, sink, log)

	assert.ErrorIs(t, err, ErrTransferFailed)

	// Platform and host legs delivered and marked as such.
	assert.Equal(t, []domain.Address{wallet, host}, tr.pushed)
	assert.Contains(t, log.pushed, transfers[0].ID)
	assert.Contains(t, log.pushed, transfers[1].ID)

	// The traveler leg is still a pending push, untouched in the log.
	assert.NotContains(t, log.pushed, transfers[2].ID)
	assert.NotContains(t, log.credited, transfers[2].ID)
	assert.Equal(t, domain.TransferPush, transfers[2].Method)
	assert.Empty(t, transfers[2].TxHash)
	assert.False(t, transfers[2].Confirmed)
}
