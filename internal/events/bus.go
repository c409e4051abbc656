// Package events fans new donations out to live subscribers.
package events

import (
	"context"
	"sync"

	"nuoitoi/internal/domain"
	"nuoitoi/internal/models"

	"go.uber.org/zap"
)

// Handler receives one donation. It must not block.
type Handler func(models.Donation)

type Bus interface {
	Publish(ctx context.Context, d models.Donation) error
	// Subscribe registers h; the returned func removes it and is safe to call twice.
	Subscribe(h Handler) (func(), error)
}

// LocalBus delivers synchronously in publish order, without replay.
type LocalBus struct {
	pubMu    sync.Mutex
	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64
	max      int
	log      *zap.Logger
}

func NewLocalBus(maxSubscribers int, log *zap.Logger) *LocalBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalBus{
		handlers: make(map[uint64]Handler),
		max:      maxSubscribers,
		log:      log.Named("events"),
	}
}

func (b *LocalBus) Subscribe(h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.handlers) >= b.max {
		return nil, domain.ErrTooManySubscribers
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}, nil
}

func (b *LocalBus) Publish(_ context.Context, d models.Donation) error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		b.deliver(h, d)
	}
	return nil
}

func (b *LocalBus) deliver(h Handler, d models.Donation) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber panicked", zap.Any("panic", r), zap.String("donation_id", d.ID))
		}
	}()
	h(d)
}

func (b *LocalBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
