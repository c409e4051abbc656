package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// PayOSClient implements Gateway against the PayOS merchant API.
type PayOSClient struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	client      *http.Client
	log         *zap.Logger
}

func NewPayOSClient(baseURL, clientID, apiKey, checksumKey string, timeout time.Duration, log *zap.Logger) *PayOSClient {
	if baseURL == "" {
		baseURL = "https://api-merchant.payos.vn"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PayOSClient{
		BaseURL:     baseURL,
		ClientID:    clientID,
		APIKey:      apiKey,
		ChecksumKey: checksumKey,
		client:      &http.Client{Timeout: timeout},
		log:         log.Named("payos"),
	}
}

func (p *PayOSClient) Configured() bool {
	return p.ClientID != "" && p.APIKey != "" && p.ChecksumKey != ""
}

type payosEnvelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type payosCreateReq struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	BuyerName   string `json:"buyerName,omitempty"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	Signature   string `json:"signature"`
}

type payosCreateData struct {
	Bin           string `json:"bin"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	OrderCode     int64  `json:"orderCode"`
	Currency      string `json:"currency"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

type payosStatusData struct {
	ID         string `json:"id"`
	OrderCode  int64  `json:"orderCode"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amountPaid"`
	Status     string `json:"status"`
}

type payosWebhookData struct {
	OrderCode           int64   `json:"orderCode"`
	Amount              int64   `json:"amount"`
	Description         string  `json:"description"`
	AccountNumber       string  `json:"accountNumber"`
	Reference           string  `json:"reference"`
	TransactionDateTime string  `json:"transactionDateTime"`
	Currency            string  `json:"currency"`
	PaymentLinkID       string  `json:"paymentLinkId"`
	Code                string  `json:"code"`
	Desc                string  `json:"desc"`
	CounterAccountName  *string `json:"counterAccountName"`
	CounterAccountNo    *string `json:"counterAccountNumber"`
}

func (p *PayOSClient) CreatePaymentRequest(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Amount < MinAmount {
		return nil, &PaymentCreationError{OrderCode: req.OrderCode, Err: ErrInvalidAmount}
	}
	if utf8.RuneCountInString(req.Description) > DescriptionLimit {
		req.Description = string([]rune(req.Description)[:DescriptionLimit])
	}
	payload := payosCreateReq{
		OrderCode:   req.OrderCode,
		Amount:      req.Amount,
		Description: req.Description,
		BuyerName:   req.BuyerName,
		CancelURL:   req.CancelURL,
		ReturnURL:   req.ReturnURL,
		Signature:   SignPaymentRequest(p.ChecksumKey, req),
	}
	env, err := p.do(ctx, http.MethodPost, "/v2/payment-requests", payload)
	if err != nil {
		return nil, &PaymentCreationError{OrderCode: req.OrderCode, Err: err}
	}
	if env.Signature != "" && !VerifyData(p.ChecksumKey, env.Data, env.Signature) {
		return nil, &PaymentCreationError{OrderCode: req.OrderCode, Err: errors.New("response signature mismatch")}
	}
	var data payosCreateData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &PaymentCreationError{OrderCode: req.OrderCode, Err: err}
	}
	p.log.Info("payment link created",
		zap.Int64("order_code", data.OrderCode),
		zap.String("payment_link_id", data.PaymentLinkID),
		zap.Int64("amount", data.Amount),
	)
	return &CreateResult{
		QRPayload:     data.QRCode,
		OrderCode:     data.OrderCode,
		PaymentLinkID: data.PaymentLinkID,
		CheckoutURL:   data.CheckoutURL,
	}, nil
}

func (p *PayOSClient) GetPaymentStatus(ctx context.Context, orderCode int64) (*StatusResult, error) {
	env, err := p.do(ctx, http.MethodGet, "/v2/payment-requests/"+strconv.FormatInt(orderCode, 10), nil)
	if err != nil {
		return nil, &PaymentLookupError{OrderCode: orderCode, Err: err}
	}
	var data payosStatusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &PaymentLookupError{OrderCode: orderCode, Err: err}
	}
	return &StatusResult{Status: NormalizeStatus(data.Status), Amount: data.Amount}, nil
}

func (p *PayOSClient) VerifyWebhook(raw []byte) (*WebhookEvent, error) {
	var env payosEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookVerification, err)
	}
	if len(env.Data) == 0 || env.Signature == "" {
		return nil, fmt.Errorf("%w: missing data or signature", ErrWebhookVerification)
	}
	if !VerifyData(p.ChecksumKey, env.Data, env.Signature) {
		return nil, ErrWebhookVerification
	}
	var data payosWebhookData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookVerification, err)
	}
	code := data.Code
	if code == "" {
		code = env.Code
	}
	ev := &WebhookEvent{
		Code:        code,
		OrderCode:   data.OrderCode,
		Amount:      data.Amount,
		Description: data.Description,
		Reference:   data.Reference,
	}
	if data.CounterAccountName != nil {
		ev.CounterAccountName = *data.CounterAccountName
	}
	return ev, nil
}

func (p *PayOSClient) do(ctx context.Context, method, path string, body interface{}) (*payosEnvelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", p.ClientID)
	req.Header.Set("x-api-key", p.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.Warn("unexpected http status", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return nil, fmt.Errorf("payos %s %s: http %d", method, path, resp.StatusCode)
	}
	var env payosEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("payos %s %s: decode: %w", method, path, err)
	}
	if env.Code != "00" {
		return nil, fmt.Errorf("payos %s %s: code=%s desc=%s", method, path, env.Code, env.Desc)
	}
	return &env, nil
}
