package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

// BookingEventsPubSub publishes ledger events for the off-chain backend
// to index. The backend correlates EventRunRef with its own experience
// records; the ledger only echoes the reference.
type BookingEventsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingEventsPubSub(rdb *redis.Client) *BookingEventsPubSub {
	return &BookingEventsPubSub{
		rdb:     rdb,
		channel: ChannelBookingEvents(),
	}
}

const (
	EventBookingCreated   = "booking_created"
	EventBookingSettled   = "booking_settled"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEvent is the wire format on the events channel. Only the
// fields relevant to the event type are set.
type BookingEvent struct {
	Type           string         `json:"type"`
	BookingID      int64          `json:"booking_id"`
	EventRunRef    string         `json:"event_run_ref,omitempty"`
	Traveler       domain.Address `json:"traveler,omitempty"`
	Host           domain.Address `json:"host,omitempty"`
	GrossAmount    int64          `json:"gross_amount,omitempty"`
	Outcome        string         `json:"outcome,omitempty"`
	HostPayout     int64          `json:"host_payout,omitempty"`
	TravelerPayout int64          `json:"traveler_payout,omitempty"`
	PlatformFee    int64          `json:"platform_fee,omitempty"`
	RefundAmount   int64          `json:"refund_amount,omitempty"`
	TsUnix         int64          `json:"ts_unix"`
}

func (p *BookingEventsPubSub) PublishCreated(ctx context.Context, b *domain.Booking) error {
	return p.publish(ctx, BookingEvent{
		Type:        EventBookingCreated,
		BookingID:   b.ID,
		EventRunRef: b.EventRunRef,
		Traveler:    b.Traveler,
		Host:        b.Host,
		GrossAmount: b.GrossAmount,
	})
}

func (p *BookingEventsPubSub) PublishSettled(ctx context.Context, s *domain.Settlement) error {
	ev := BookingEvent{
		Type:           EventBookingSettled,
		BookingID:      s.BookingID,
		HostPayout:     s.HostPayout,
		TravelerPayout: s.TravelerPayout,
		PlatformFee:    s.PlatformFee,
	}
	if s.Outcome != nil {
		ev.Outcome = string(*s.Outcome)
	}
	return p.publish(ctx, ev)
}

func (p *BookingEventsPubSub) PublishCancelled(ctx context.Context, s *domain.Settlement) error {
	return p.publish(ctx, BookingEvent{
		Type:         EventBookingCancelled,
		BookingID:    s.BookingID,
		RefundAmount: s.TravelerPayout,
	})
}

func (p *BookingEventsPubSub) publish(ctx context.Context, ev BookingEvent) error {
	ev.TsUnix = time.Now().Unix()

	b, _ := json.Marshal(ev)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *BookingEventsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev BookingEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev BookingEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.BookingID != 0 {
				handler(ctx, ev)
			}
		}
	}
}
