package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nuoitoi/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus publishes through a Redis channel so every instance sees every donation.
// Subscribers are local; Run relays channel messages into them.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   *LocalBus
	log     *zap.Logger

	// MinBackoff and MaxBackoff bound the wait between relay restarts.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func NewRedisBus(client *redis.Client, channel string, local *LocalBus, log *zap.Logger) *RedisBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBus{
		client:     client,
		channel:    channel,
		local:      local,
		log:        log.Named("events.redis"),
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

func (b *RedisBus) Publish(ctx context.Context, d models.Donation) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

func (b *RedisBus) Subscribe(h Handler) (func(), error) {
	return b.local.Subscribe(h)
}

// Run relays channel messages into the local bus until ctx is done,
// resubscribing with exponential backoff whenever the subscription fails.
func (b *RedisBus) Run(ctx context.Context) error {
	backoff := b.MinBackoff
	for {
		relayed, err := b.relay(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if relayed {
			backoff = b.MinBackoff
		}
		b.log.Warn("relay stopped, resubscribing", zap.Error(err), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > b.MaxBackoff {
			backoff = b.MaxBackoff
		}
	}
}

// relay reports whether the subscription was established before it failed.
func (b *RedisBus) relay(ctx context.Context) (bool, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return false, err
	}
	b.log.Info("relay subscribed", zap.String("channel", b.channel))
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("redis subscription closed")
			}
			var d models.Donation
			if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
				b.log.Warn("bad donation payload", zap.Error(err))
				continue
			}
			_ = b.local.Publish(ctx, d)
		}
	}
}
