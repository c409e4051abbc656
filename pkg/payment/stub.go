package payment

import (
	"context"
	"fmt"
)

// StubGateway stands in for the provider when credentials are absent. Every
// payment stays PENDING and webhooks are acknowledged without an event.
type StubGateway struct{}

func (s *StubGateway) CreatePaymentRequest(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Amount < MinAmount {
		return nil, &PaymentCreationError{OrderCode: req.OrderCode, Err: ErrInvalidAmount}
	}
	return &CreateResult{
		QRPayload:     "",
		OrderCode:     req.OrderCode,
		PaymentLinkID: fmt.Sprintf("mock_%d", req.OrderCode),
		CheckoutURL:   "",
	}, nil
}

func (s *StubGateway) GetPaymentStatus(ctx context.Context, orderCode int64) (*StatusResult, error) {
	return &StatusResult{Status: StatusPending, Amount: 0}, nil
}

func (s *StubGateway) VerifyWebhook(raw []byte) (*WebhookEvent, error) {
	return nil, nil
}

func (s *StubGateway) Configured() bool { return false }
