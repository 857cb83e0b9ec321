// Package task runs the background jobs around the ledger. Settlement
// itself is synchronous; the jobs here only track what already
// happened and retry deliveries the request path could not complete.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tanishkhot/mayhouse-sub002/internal/gateway"
	postgresrepo "github.com/tanishkhot/mayhouse-sub002/internal/repository/postgres"
)

// ConfirmationChecker reports whether a pushed transaction is final on
// the rail.
type ConfirmationChecker interface {
	IsConfirmed(ctx context.Context, txHash string) (bool, error)
}

// ConfirmationTracker periodically sweeps the transfer log. Legs whose
// recording transaction committed but whose push never went out are
// redelivered, and pushed disbursements are marked once their
// transactions reach finality.
type ConfirmationTracker struct {
	store     *postgresrepo.Store
	checker   ConfirmationChecker
	gw        *gateway.Gateway
	logger    *slog.Logger
	scheduler gocron.Scheduler
}

func NewConfirmationTracker(
	store *postgresrepo.Store,
	checker ConfirmationChecker,
	gw *gateway.Gateway,
	interval time.Duration,
	logger *slog.Logger,
) (*ConfirmationTracker, error) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	t := &ConfirmationTracker{
		store:     store,
		checker:   checker,
		gw:        gw,
		logger:    logger,
		scheduler: scheduler,
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(t.sweep),
	); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *ConfirmationTracker) Start() {
	t.scheduler.Start()
}

func (t *ConfirmationTracker) Stop() error {
	return t.scheduler.Shutdown()
}

func (t *ConfirmationTracker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	t.redeliver(ctx)
	t.confirm(ctx)
}

// redeliver retries recorded legs that never left the operator
// account. Delivery marks each leg as it lands, so a leg is attempted
// again only while it is still pending.
func (t *ConfirmationTracker) redeliver(ctx context.Context) {
	pending, err := t.store.Transfers().ListUndelivered(ctx, 100)
	if err != nil {
		t.logger.Error("failed to list undelivered transfers", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	if err := t.gw.Deliver(ctx, pending, t.store.Credits(), t.store.Transfers()); err != nil {
		t.logger.Warn("redelivery sweep left legs pending", "error", err)
	}
}

func (t *ConfirmationTracker) confirm(ctx context.Context) {
	pending, err := t.store.Transfers().ListUnconfirmed(ctx, 100)
	if err != nil {
		t.logger.Error("failed to list unconfirmed transfers", "error", err)
		return
	}

	for _, transfer := range pending {
		confirmed, err := t.checker.IsConfirmed(ctx, transfer.TxHash)
		if err != nil {
			t.logger.Warn("confirmation check failed",
				"transfer_id", transfer.ID, "tx_hash", transfer.TxHash, "error", err)
			continue
		}
		if !confirmed {
			continue
		}

		if err := t.store.Transfers().MarkConfirmed(ctx, transfer.ID); err != nil {
			t.logger.Error("failed to mark transfer confirmed",
				"transfer_id", transfer.ID, "error", err)
			continue
		}

		t.logger.Info("disbursement confirmed",
			"transfer_id", transfer.ID, "booking_id", transfer.BookingID,
			"tx_hash", transfer.TxHash)
	}
}
