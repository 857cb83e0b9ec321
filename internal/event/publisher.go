// Package event fans ledger events out to the redis channel the
// off-chain backend indexes. Publishes run on a worker pool so commit
// hooks never block a request on redis.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
	redisx "github.com/tanishkhot/mayhouse-sub002/internal/redis"
)

const publishTimeout = 5 * time.Second

type Publisher struct {
	pool   *ants.Pool
	pubsub *redisx.BookingEventsPubSub
	logger *slog.Logger
}

func NewPublisher(poolSize int, pubsub *redisx.BookingEventsPubSub, logger *slog.Logger) (*Publisher, error) {
	if poolSize <= 0 {
		poolSize = 16
	}

	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Publisher{
		pool:   pool,
		pubsub: pubsub,
		logger: logger,
	}, nil
}

func (p *Publisher) BookingCreated(b *domain.Booking) {
	snapshot := *b
	p.submit("booking_created", func(ctx context.Context) error {
		return p.pubsub.PublishCreated(ctx, &snapshot)
	})
}

func (p *Publisher) BookingSettled(s *domain.Settlement) {
	snapshot := *s
	p.submit("booking_settled", func(ctx context.Context) error {
		return p.pubsub.PublishSettled(ctx, &snapshot)
	})
}

func (p *Publisher) BookingCancelled(s *domain.Settlement) {
	snapshot := *s
	p.submit("booking_cancelled", func(ctx context.Context) error {
		return p.pubsub.PublishCancelled(ctx, &snapshot)
	})
}

// submit runs the publish on the pool; when the pool is saturated the
// publish happens inline instead of being dropped. Events are carried
// on a fresh context because commit hooks outlive their request.
func (p *Publisher) submit(kind string, fn func(ctx context.Context) error) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			p.logger.Error("failed to publish ledger event", "type", kind, "error", err)
		}
	}

	if err := p.pool.Submit(run); err != nil {
		run()
	}
}

func (p *Publisher) Close() {
	p.pool.Release()
}
