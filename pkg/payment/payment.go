package payment

import (
	"context"
	"errors"
	"fmt"
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// MinAmount is the smallest amount the provider accepts for a QR transfer (VND).
const MinAmount int64 = 2000

// DescriptionLimit is the provider's maximum description length.
const DescriptionLimit = 25

type CreateRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
	ReturnURL   string
	CancelURL   string
	BuyerName   string
}

type CreateResult struct {
	QRPayload     string // EMVCo string, empty for the stub gateway
	OrderCode     int64
	PaymentLinkID string
	CheckoutURL   string
}

type StatusResult struct {
	Status string
	Amount int64
}

// WebhookEvent is the verified settlement notification.
type WebhookEvent struct {
	Code               string
	OrderCode          int64
	Amount             int64
	CounterAccountName string
	Description        string
	Reference          string
}

// Gateway abstracts the settlement provider.
type Gateway interface {
	CreatePaymentRequest(ctx context.Context, req CreateRequest) (*CreateResult, error)
	GetPaymentStatus(ctx context.Context, orderCode int64) (*StatusResult, error)
	// VerifyWebhook returns nil, nil when there is nothing to act on (unconfigured gateway).
	VerifyWebhook(raw []byte) (*WebhookEvent, error)
	Configured() bool
}

var (
	ErrInvalidAmount       = errors.New("payment amount below minimum")
	ErrWebhookVerification = errors.New("webhook signature verification failed")
)

// PaymentCreationError means the provider did not register the order.
type PaymentCreationError struct {
	OrderCode int64
	Err       error
}

func (e *PaymentCreationError) Error() string {
	return fmt.Sprintf("create payment %d: %v", e.OrderCode, e.Err)
}

func (e *PaymentCreationError) Unwrap() error { return e.Err }

// PaymentLookupError means the status is unknown; callers retry later.
type PaymentLookupError struct {
	OrderCode int64
	Err       error
}

func (e *PaymentLookupError) Error() string {
	return fmt.Sprintf("get payment %d: %v", e.OrderCode, e.Err)
}

func (e *PaymentLookupError) Unwrap() error { return e.Err }

// NormalizeStatus folds provider-specific states into PENDING, PAID, CANCELLED or EXPIRED.
func NormalizeStatus(s string) string {
	switch s {
	case StatusPaid:
		return StatusPaid
	case StatusCancelled, "FAILED":
		return StatusCancelled
	case StatusExpired:
		return StatusExpired
	default: // PENDING, PROCESSING, UNDERPAID
		return StatusPending
	}
}
