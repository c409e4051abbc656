// Package cache holds donor-entered text between payment creation and settlement.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// PendingPayment is what the donor typed; the provider's webhook never echoes it.
type PendingPayment struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// PendingStore is a consume-once TTL map keyed by order code.
type PendingStore interface {
	Put(ctx context.Context, orderCode int64, p PendingPayment) error
	// Take returns nil, nil when the entry is absent, expired or already taken.
	Take(ctx context.Context, orderCode int64) (*PendingPayment, error)
}

// MemoryStore is a process-local PendingStore bounded by TTL and capacity.
type MemoryStore struct {
	cache *ttlcache.Cache[int64, PendingPayment]
}

func NewMemoryStore(ttl time.Duration, capacity uint64) *MemoryStore {
	c := ttlcache.New[int64, PendingPayment](
		ttlcache.WithTTL[int64, PendingPayment](ttl),
		ttlcache.WithCapacity[int64, PendingPayment](capacity),
		ttlcache.WithDisableTouchOnHit[int64, PendingPayment](),
	)
	return &MemoryStore{cache: c}
}

// Start runs the expiry sweeper until Stop is called.
func (s *MemoryStore) Start() {
	go s.cache.Start()
}

func (s *MemoryStore) Stop() {
	s.cache.Stop()
}

func (s *MemoryStore) Put(_ context.Context, orderCode int64, p PendingPayment) error {
	s.cache.Set(orderCode, p, ttlcache.DefaultTTL)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, orderCode int64) (*PendingPayment, error) {
	item, ok := s.cache.GetAndDelete(orderCode)
	if !ok || item == nil || item.IsExpired() {
		return nil, nil
	}
	v := item.Value()
	return &v, nil
}

func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
