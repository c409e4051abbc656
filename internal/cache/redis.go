package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares pending entries across instances. GETDEL keeps Take atomic.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(orderCode int64) string {
	return fmt.Sprintf("pending:order:%d", orderCode)
}

func (r *RedisStore) Put(ctx context.Context, orderCode int64, p PendingPayment) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(orderCode), data, r.ttl).Err()
}

func (r *RedisStore) Take(ctx context.Context, orderCode int64) (*PendingPayment, error) {
	data, err := r.client.GetDel(ctx, r.key(orderCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p PendingPayment
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
