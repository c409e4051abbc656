package stream

import (
	"context"
	"encoding/json"
	"time"

	"nuoitoi/internal/events"
	"nuoitoi/internal/metrics"
	"nuoitoi/internal/models"

	"go.uber.org/zap"
)

// StatusWatcher polls one order until it settles, reporting each status change.
type StatusWatcher interface {
	WatchStatus(ctx context.Context, orderCode int64, onStatus func(status string))
}

type Options struct {
	PingInterval time.Duration
	BufferSize   int
}

// Notifier subscribes each connection to the bus for its lifetime.
type Notifier struct {
	bus     events.Bus
	watcher StatusWatcher
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
}

func NewNotifier(bus events.Bus, watcher StatusWatcher, m *metrics.Metrics, log *zap.Logger, opts Options) *Notifier {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{bus: bus, watcher: watcher, metrics: m, log: log.Named("stream"), opts: opts}
}

// attach registers a client whose queue receives encode(d) for every published donation.
func (n *Notifier) attach(encode func(models.Donation) ([]byte, error)) (*Client, func(), error) {
	client := NewClient(n.opts.BufferSize, n.metrics.StreamDropped.Inc)
	unsub, err := n.bus.Subscribe(func(d models.Donation) {
		data, err := encode(d)
		if err != nil {
			n.log.Warn("encode donation", zap.Error(err))
			return
		}
		client.Offer(data)
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, func() {
		unsub()
		client.Close()
	}, nil
}

func marshalDonation(d models.Donation) ([]byte, error) {
	return json.Marshal(d)
}
