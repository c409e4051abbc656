package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"nuoitoi/config"
	"nuoitoi/internal/auth"
	"nuoitoi/internal/cache"
	"nuoitoi/internal/domain"
	"nuoitoi/internal/events"
	"nuoitoi/internal/metrics"
	"nuoitoi/internal/models"
	"nuoitoi/internal/repository"
	"nuoitoi/internal/sanitize"
	"nuoitoi/pkg/payment"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type DonationStore interface {
	Insert(ctx context.Context, d *models.Donation) (*models.Donation, error)
	FindByOrderCode(ctx context.Context, orderCode int64) (*models.Donation, error)
	ListRecent(ctx context.Context, limit int) ([]models.Donation, error)
	AggregateStats(ctx context.Context, since time.Time) (*repository.DonationAggregate, error)
}

type ExpenseStore interface {
	ListByMonth(ctx context.Context, month string) ([]models.Expense, error)
}

// DonationService runs payment creation, settlement and the read-side views.
type DonationService struct {
	cfg       *config.Config
	donations DonationStore
	expenses  ExpenseStore
	pending   cache.PendingStore
	bus       events.Bus
	gateway   payment.Gateway
	metrics   *metrics.Metrics
	log       *zap.Logger
	codes     *orderCodes
	settling  singleflight.Group
	now       func() time.Time
}

func NewDonationService(cfg *config.Config, donations DonationStore, expenses ExpenseStore, pending cache.PendingStore,
	bus events.Bus, gateway payment.Gateway, m *metrics.Metrics, log *zap.Logger) *DonationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DonationService{
		cfg:       cfg,
		donations: donations,
		expenses:  expenses,
		pending:   pending,
		bus:       bus,
		gateway:   gateway,
		metrics:   m,
		log:       log.Named("donation"),
		codes:     &orderCodes{now: time.Now},
		now:       time.Now,
	}
}

// orderCodes hands out millisecond timestamps, bumped when two calls share a millisecond.
type orderCodes struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func (o *orderCodes) next() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	code := o.now().UnixMilli()
	if code <= o.last {
		code = o.last + 1
	}
	o.last = code
	return code
}

type CreatePaymentInput struct {
	Amount  int64
	Name    string
	Message string
	Origin  string
}

type CreatePaymentResult struct {
	QRCode        string `json:"qrCode"`
	OrderCode     int64  `json:"orderCode"`
	PaymentLinkID string `json:"paymentLinkId"`
	CheckoutURL   string `json:"checkoutUrl"`
	ReceiptToken  string `json:"receiptToken,omitempty"`
	IsMock        bool   `json:"isMock,omitempty"`
}

func (s *DonationService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	if in.Amount < domain.MinDonationAmount {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, domain.MsgMinAmount)
	}
	name := sanitize.Text(in.Name, domain.MaxNameLength)
	message := sanitize.Text(in.Message, domain.MaxMessageLength)
	label := name
	if label == "" {
		label = "Anon"
	}
	origin := strings.TrimRight(in.Origin, "/")
	if origin == "" {
		origin = strings.TrimRight(s.cfg.Server.PublicBaseURL, "/")
	}

	orderCode := s.codes.next()
	res, err := s.gateway.CreatePaymentRequest(ctx, payment.CreateRequest{
		OrderCode:   orderCode,
		Amount:      in.Amount,
		Description: sanitize.Truncate(domain.DescriptionPrefix+" "+label, domain.DescriptionMaxLen),
		ReturnURL:   origin + "?payment=success",
		CancelURL:   origin + "?payment=cancelled",
		BuyerName:   name,
	})
	if err != nil {
		s.metrics.PaymentsCreated.WithLabelValues("error").Inc()
		s.log.Error("create payment", zap.Int64("order_code", orderCode), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	out := &CreatePaymentResult{
		OrderCode:     res.OrderCode,
		PaymentLinkID: res.PaymentLinkID,
		CheckoutURL:   res.CheckoutURL,
		IsMock:        !s.gateway.Configured(),
	}
	if out.IsMock {
		s.metrics.PaymentsCreated.WithLabelValues("mock").Inc()
	} else {
		s.metrics.PaymentsCreated.WithLabelValues("ok").Inc()
		if err := s.pending.Put(ctx, res.OrderCode, cache.PendingPayment{Name: name, Message: message}); err != nil {
			s.log.Warn("cache pending payment", zap.Int64("order_code", res.OrderCode), zap.Error(err))
		}
	}
	if out.QRCode, err = payment.QRDataURI(res.QRPayload); err != nil {
		s.log.Warn("render qr", zap.Int64("order_code", res.OrderCode), zap.Error(err))
	}
	if out.ReceiptToken, err = auth.GenerateReceiptToken(&s.cfg.Receipt, res.OrderCode, in.Amount); err != nil {
		s.log.Warn("issue receipt", zap.Int64("order_code", res.OrderCode), zap.Error(err))
	}
	return out, nil
}

type PaymentStatusResult struct {
	Status string `json:"status"`
	Amount int64  `json:"amount"`
	IsMock bool   `json:"isMock,omitempty"`
}

func (s *DonationService) PaymentStatus(ctx context.Context, orderCode int64) (*PaymentStatusResult, error) {
	if orderCode <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, domain.MsgInvalidOrderCode)
	}
	res, err := s.gateway.GetPaymentStatus(ctx, orderCode)
	if err != nil {
		s.log.Warn("payment status", zap.Int64("order_code", orderCode), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	return &PaymentStatusResult{Status: res.Status, Amount: res.Amount, IsMock: !s.gateway.Configured()}, nil
}

// HandleWebhook records a verified settlement at most once per order code.
// It returns the new row, or nil when nothing was recorded.
func (s *DonationService) HandleWebhook(ctx context.Context, raw []byte) (*models.Donation, error) {
	ev, err := s.gateway.VerifyWebhook(raw)
	if err != nil {
		s.webhookOutcome("rejected")
		s.log.Warn("webhook rejected", zap.Error(err))
		return nil, err
	}
	if ev == nil {
		s.webhookOutcome("ignored")
		return nil, nil
	}
	if ev.Code != domain.WebhookCodeSuccess {
		s.webhookOutcome("not_settled")
		s.log.Info("webhook not settled", zap.Int64("order_code", ev.OrderCode), zap.String("code", ev.Code))
		return nil, nil
	}

	if ev.Amount < domain.MinDonationAmount {
		s.webhookOutcome("invalid_amount")
		s.log.Warn("webhook amount below minimum", zap.Int64("order_code", ev.OrderCode), zap.Int64("amount", ev.Amount))
		return nil, nil
	}

	v, err, _ := s.settling.Do(strconv.FormatInt(ev.OrderCode, 10), func() (interface{}, error) {
		return s.settle(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	d, _ := v.(*models.Donation)
	return d, nil
}

// settle runs once at a time per order code, so only the delivery that records
// the row consumes the pending donor text.
func (s *DonationService) settle(ctx context.Context, ev *payment.WebhookEvent) (*models.Donation, error) {
	existing, err := s.donations.FindByOrderCode(ctx, ev.OrderCode)
	if err != nil {
		s.webhookOutcome("store_error")
		s.log.Error("webhook lookup", zap.Int64("order_code", ev.OrderCode), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		s.webhookOutcome("duplicate")
		return nil, nil
	}

	pending, err := s.pending.Take(ctx, ev.OrderCode)
	if err != nil {
		s.log.Warn("take pending payment", zap.Int64("order_code", ev.OrderCode), zap.Error(err))
	}
	name, message := donorText(pending, ev)
	orderCode := ev.OrderCode
	d, err := s.donations.Insert(ctx, &models.Donation{
		Name:      name,
		Amount:    ev.Amount,
		Message:   optional(message),
		Verified:  true,
		OrderCode: &orderCode,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateDonation):
		s.webhookOutcome("duplicate")
		return nil, nil
	case errors.Is(err, domain.ErrValidation):
		s.webhookOutcome("invalid_amount")
		s.log.Warn("webhook donation rejected", zap.Int64("order_code", orderCode), zap.Error(err))
		return nil, nil
	case err != nil:
		s.webhookOutcome("store_error")
		s.log.Error("webhook insert", zap.Int64("order_code", orderCode), zap.Error(err))
		if pending != nil {
			_ = s.pending.Put(ctx, orderCode, *pending)
		}
		return nil, err
	}

	s.webhookOutcome("recorded")
	s.metrics.DonationsRecorded.WithLabelValues("true").Inc()
	s.log.Info("donation verified", zap.String("id", d.ID), zap.Int64("order_code", orderCode), zap.Int64("amount", d.Amount))
	s.publish(ctx, d)
	return d, nil
}

func donorText(p *cache.PendingPayment, ev *payment.WebhookEvent) (string, string) {
	if p != nil {
		name := p.Name
		if name == "" {
			name = domain.AnonymousName
		}
		return name, p.Message
	}
	name := sanitize.Text(ev.CounterAccountName, domain.MaxNameLength)
	if name == "" {
		name = domain.AnonymousName
	}
	return name, sanitize.Text(ev.Description, domain.MaxMessageLength)
}

type RecordInput struct {
	Amount       int64
	Name         string
	Message      string
	OrderCode    int64
	ReceiptToken string
}

type RecordResult struct {
	Donation *models.Donation
	Pending  bool
}

// RecordDonation stores an unverified manual donation. With an order code it only
// confirms: the webhook row is returned if present and nothing is written.
func (s *DonationService) RecordDonation(ctx context.Context, in RecordInput) (*RecordResult, error) {
	if in.OrderCode != 0 {
		return s.confirm(ctx, in)
	}
	if in.Amount < domain.MinDonationAmount {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, domain.MsgMinAmount)
	}
	d, err := s.donations.Insert(ctx, &models.Donation{
		Name:    sanitize.Text(in.Name, domain.MaxNameLength),
		Amount:  in.Amount,
		Message: optional(sanitize.Text(in.Message, domain.MaxMessageLength)),
	})
	if err != nil {
		s.log.Error("record donation", zap.Error(err))
		return nil, err
	}
	s.metrics.DonationsRecorded.WithLabelValues("false").Inc()
	s.publish(ctx, d)
	return &RecordResult{Donation: d}, nil
}

func (s *DonationService) confirm(ctx context.Context, in RecordInput) (*RecordResult, error) {
	claims, err := auth.ParseReceiptToken(&s.cfg.Receipt, in.ReceiptToken)
	if err != nil {
		s.log.Info("receipt rejected", zap.Int64("order_code", in.OrderCode), zap.Error(err))
		return nil, err
	}
	if claims.OrderCode != in.OrderCode {
		return nil, fmt.Errorf("%w: order code mismatch", domain.ErrReceiptInvalid)
	}
	d, err := s.donations.FindByOrderCode(ctx, in.OrderCode)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return &RecordResult{Pending: true}, nil
	}
	return &RecordResult{Donation: d}, nil
}

// WatchStatus polls the gateway for orderCode and reports each status change.
func (s *DonationService) WatchStatus(ctx context.Context, orderCode int64, onStatus func(status string)) {
	last := ""
	_, _ = PollSettlement(ctx, s.gateway, orderCode, s.cfg.Stream.PollInterval, func(status string) {
		if status == last {
			return
		}
		last = status
		onStatus(status)
	})
}

func (s *DonationService) publish(ctx context.Context, d *models.Donation) {
	if err := s.bus.Publish(ctx, *d); err != nil {
		s.log.Warn("publish donation", zap.String("id", d.ID), zap.Error(err))
	}
}

func (s *DonationService) webhookOutcome(outcome string) {
	s.metrics.WebhookOutcomes.WithLabelValues(outcome).Inc()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
