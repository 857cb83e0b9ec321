// Package gateway is the single boundary through which held funds leave
// the ledger. Disbursement runs in two phases: Plan builds the legs the
// settlement transaction records, and Deliver executes them only after
// that transaction has committed. An aborted or retried settlement
// therefore never moves real value.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

// ErrTransferFailed means a recorded leg could not be delivered by push
// nor parked as an internal credit. The leg stays pending in the
// transfer log and is retried by the background sweep.
var ErrTransferFailed = errors.New("transfer failed")

// Transferer pushes native value to an external account and returns the
// rail's transaction reference.
type Transferer interface {
	Push(ctx context.Context, to domain.Address, amount int64) (txHash string, err error)
}

// CreditSink parks value for later withdrawal when a push is rejected.
type CreditSink interface {
	Add(ctx context.Context, to domain.Address, amount int64) error
}

// TransferLog records delivery outcomes on previously recorded legs.
type TransferLog interface {
	MarkPushed(ctx context.Context, id int64, txHash string) error
	MarkCredited(ctx context.Context, id int64) error
}

type Gateway struct {
	transferer Transferer
	logger     *slog.Logger
}

func New(transferer Transferer, logger *slog.Logger) *Gateway {
	return &Gateway{
		transferer: transferer,
		logger:     logger,
	}
}

// Plan builds the disbursement legs for a settlement: platform fee
// first, then host, then traveler. The order is fixed so indexers and
// tests can rely on it. Zero-amount legs are skipped. Planning is pure;
// the legs start as pending pushes with no transaction reference.
func (g *Gateway) Plan(
	s *domain.Settlement,
	platformWallet, host, traveler domain.Address,
) []domain.Transfer {
	legs := []struct {
		party  domain.TransferParty
		to     domain.Address
		amount int64
	}{
		{domain.PartyPlatform, platformWallet, s.PlatformFee},
		{domain.PartyHost, host, s.HostPayout},
		{domain.PartyTraveler, traveler, s.TravelerPayout},
	}

	var out []domain.Transfer
	for _, leg := range legs {
		if leg.amount == 0 {
			continue
		}

		out = append(out, domain.Transfer{
			BookingID: s.BookingID,
			Party:     leg.party,
			Recipient: leg.to,
			Amount:    leg.amount,
			Method:    domain.TransferPush,
		})
	}

	return out
}

// Deliver executes recorded legs and marks each outcome in the log.
// Pushes are irreversible, so Deliver must only run after the
// transaction that recorded the legs has committed. A leg rejected by
// the rail is parked as internal credit for its recipient; a leg that
// fails both ways is left pending for the sweep and reported wrapped in
// ErrTransferFailed. Legs are independent: one failure does not stop
// the others.
func (g *Gateway) Deliver(
	ctx context.Context,
	transfers []domain.Transfer,
	sink CreditSink,
	log TransferLog,
) error {
	const op = "gateway.Deliver"

	var errs []error
	for i := range transfers {
		if err := g.deliver(ctx, &transfers[i], sink, log); err != nil {
			g.logger.Error("disbursement leg not delivered",
				"transfer_id", transfers[i].ID, "booking_id", transfers[i].BookingID,
				"party", transfers[i].Party, "error", err)
			errs = append(errs, fmt.Errorf("%s: %s leg: %w", op, transfers[i].Party, err))
		}
	}

	return errors.Join(errs...)
}

func (g *Gateway) deliver(
	ctx context.Context,
	t *domain.Transfer,
	sink CreditSink,
	log TransferLog,
) error {
	txHash, pushErr := g.transferer.Push(ctx, t.Recipient, t.Amount)
	if pushErr == nil {
		t.TxHash = txHash
		return log.MarkPushed(ctx, t.ID, txHash)
	}

	g.logger.Warn("push rejected, crediting instead",
		"booking_id", t.BookingID, "party", t.Party, "recipient", t.Recipient,
		"amount", t.Amount, "error", pushErr)

	if err := sink.Add(ctx, t.Recipient, t.Amount); err != nil {
		return fmt.Errorf("%w: push: %v, credit: %v", ErrTransferFailed, pushErr, err)
	}

	t.Method = domain.TransferCredit
	t.Confirmed = true
	return log.MarkCredited(ctx, t.ID)
}
