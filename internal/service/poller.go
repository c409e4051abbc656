package service

import (
	"context"
	"time"

	"nuoitoi/internal/domain"
	"nuoitoi/pkg/payment"
)

// PollSettlement looks up orderCode immediately and then every interval until a
// terminal status or ctx ends. Lookup errors are retried on the next tick.
// It never records anything; the webhook owns inserts.
func PollSettlement(ctx context.Context, gw payment.Gateway, orderCode int64, interval time.Duration, onStatus func(status string)) (string, error) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := gw.GetPaymentStatus(ctx, orderCode)
		if err == nil && ctx.Err() == nil {
			onStatus(res.Status)
			if domain.IsTerminalStatus(res.Status) {
				return res.Status, nil
			}
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
