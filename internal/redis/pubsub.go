package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatsPubSub broadcasts occupancy changes so other instances can drop
// their cached seat maps for the affected flight instance.
type SeatsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewSeatsPubSub(rdb *redis.Client) *SeatsPubSub {
	return &SeatsPubSub{
		rdb:     rdb,
		channel: ChannelSeatsChanged(),
	}
}

type seatsChangedMsg struct {
	Type      string `json:"type"`
	FlightKey string `json:"flight_key"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *SeatsPubSub) PublishSeatsChanged(ctx context.Context, flightKey string) error {
	msg := seatsChangedMsg{
		Type:      "seats_changed",
		FlightKey: flightKey,
		TsUnix:    time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *SeatsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, flightKey string)) error {
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
			var ev seatsChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.FlightKey != "" {
				handler(ctx, ev.FlightKey)
			}
		}
	}
}
