package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nuoitoi/config"
	"nuoitoi/internal/cache"
	"nuoitoi/internal/domain"
	"nuoitoi/internal/events"
	"nuoitoi/internal/handler"
	"nuoitoi/internal/metrics"
	"nuoitoi/internal/models"
	"nuoitoi/internal/repository"
	"nuoitoi/internal/service"
	"nuoitoi/pkg/payment"
	"nuoitoi/pkg/payment/paymenttest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checksumKey = "handler-checksum"

type memStore struct {
	mu   sync.Mutex
	rows []models.Donation
	seq  int
}

func (m *memStore) Insert(_ context.Context, d *models.Donation) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.Amount < domain.MinDonationAmount {
		return nil, domain.ErrValidation
	}
	for _, r := range m.rows {
		if d.OrderCode != nil && r.OrderCode != nil && *r.OrderCode == *d.OrderCode {
			return nil, domain.ErrDuplicateDonation
		}
	}
	row := *d
	m.seq++
	row.ID = fmt.Sprintf("d-%d", m.seq)
	if row.Name == "" {
		row.Name = domain.AnonymousName
	}
	row.CreatedAt = time.Now().UTC()
	m.rows = append([]models.Donation{row}, m.rows...)
	return &row, nil
}

func (m *memStore) FindByOrderCode(_ context.Context, orderCode int64) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrderCode != nil && *r.OrderCode == orderCode {
			row := r
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListRecent(_ context.Context, limit int) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return append([]models.Donation(nil), m.rows[:limit]...), nil
}

func (m *memStore) AggregateStats(_ context.Context, since time.Time) (*repository.DonationAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var agg repository.DonationAggregate
	for _, r := range m.rows {
		agg.TotalAmount += r.Amount
		agg.DonationCount++
		if !r.CreatedAt.Before(since) {
			agg.WeeklyDonorCount++
		}
	}
	return &agg, nil
}

type noExpenses struct{}

func (noExpenses) ListByMonth(context.Context, string) ([]models.Expense, error) { return nil, nil }

type failingGateway struct{ *payment.StubGateway }

func (failingGateway) CreatePaymentRequest(_ context.Context, req payment.CreateRequest) (*payment.CreateResult, error) {
	return nil, &payment.PaymentCreationError{OrderCode: req.OrderCode, Err: errors.New("provider down")}
}

func (failingGateway) GetPaymentStatus(_ context.Context, orderCode int64) (*payment.StatusResult, error) {
	return nil, &payment.PaymentLookupError{OrderCode: orderCode, Err: errors.New("timeout")}
}

func setup(t *testing.T, gw payment.Gateway) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:   config.ServerConfig{PublicBaseURL: "http://localhost:3000"},
		Donation: config.DonationConfig{MonthlyGoal: 10000000, RecentLimit: 20},
		Receipt:  config.ReceiptConfig{Secret: "s", Expiry: time.Minute, Issuer: "nuoitoi"},
	}
	store := &memStore{}
	svc := service.NewDonationService(cfg, store, noExpenses{}, cache.NewMemoryStore(time.Minute, 10),
		events.NewLocalBus(0, nil), gw, metrics.New(), nil)

	r := gin.New()
	payments := handler.NewPaymentHandler(svc)
	webhook := handler.NewPaymentWebhookHandler(svc)
	donations := handler.NewDonationHandler(svc)
	expenses := handler.NewExpenseHandler(svc)
	r.POST("/api/payos/create-payment", payments.Create)
	r.GET("/api/payos/status/:orderCode", payments.Status)
	r.POST("/api/payos/webhook", webhook.Handle)
	r.GET("/api/donations", donations.List)
	r.POST("/api/donations", donations.Record)
	r.GET("/api/donations/stats", donations.Stats)
	r.GET("/api/expenses", expenses.Get)
	return r, store
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if raw, ok := body.([]byte); ok {
		buf.Write(raw)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreatePayment_RejectsSmallAmount(t *testing.T) {
	r, _ := setup(t, &payment.StubGateway{})
	w := do(r, http.MethodPost, "/api/payos/create-payment", gin.H{"amount": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgMinAmount, decode(t, w)["error"])
}

func TestCreatePayment_StubGateway(t *testing.T) {
	r, _ := setup(t, &payment.StubGateway{})
	w := do(r, http.MethodPost, "/api/payos/create-payment", gin.H{"amount": 50000, "name": "Bao"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["isMock"])
	assert.Equal(t, "", body["qrCode"])
	assert.Contains(t, body["paymentLinkId"], "mock_")
	assert.NotEmpty(t, body["receiptToken"])
}

func TestCreatePayment_GatewayFailure(t *testing.T) {
	r, _ := setup(t, failingGateway{&payment.StubGateway{}})
	w := do(r, http.MethodPost, "/api/payos/create-payment", gin.H{"amount": 50000})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, domain.MsgCreatePaymentErr, decode(t, w)["error"])
}

func TestPaymentStatus(t *testing.T) {
	r, _ := setup(t, &payment.StubGateway{})

	w := do(r, http.MethodGet, "/api/payos/status/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/payos/status/12345", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, true, body["isMock"])
}

func TestPaymentStatus_LookupFailure(t *testing.T) {
	r, _ := setup(t, failingGateway{&payment.StubGateway{}})
	w := do(r, http.MethodGet, "/api/payos/status/12345", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, domain.MsgStatusErr, decode(t, w)["error"])
}

func TestWebhook_AlwaysAcks(t *testing.T) {
	gw := payment.NewPayOSClient("", "client", "key", checksumKey, 0, nil)
	r, store := setup(t, gw)

	w := do(r, http.MethodPost, "/api/payos/webhook", []byte("not json"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Empty(t, store.rows)

	payload := paymenttest.Webhook(checksumKey, 12345, 100000, "00", nil)
	for i := 0; i < 2; i++ {
		w = do(r, http.MethodPost, "/api/payos/webhook", payload)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	require.Len(t, store.rows, 1)
	assert.True(t, store.rows[0].Verified)
}

func TestDonations_RecordThenList(t *testing.T) {
	r, _ := setup(t, &payment.StubGateway{})

	w := do(r, http.MethodPost, "/api/donations", gin.H{"amount": 50000, "name": "Alice", "message": "Go!"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	d := body["donation"].(map[string]interface{})
	assert.Equal(t, "Alice", d["name"])
	assert.Equal(t, false, d["verified"])

	w = do(r, http.MethodGet, "/api/donations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	donations := list["donations"].([]interface{})
	require.Len(t, donations, 1)
	first := donations[0].(map[string]interface{})
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, "Go!", first["message"])
	assert.Equal(t, "Vừa xong", first["time"])
	assert.Equal(t, float64(1), list["total"])
	assert.NotContains(t, list, "isMock")
}

func TestDonations_RecordRejectsSmallAmount(t *testing.T) {
	r, store := setup(t, &payment.StubGateway{})
	w := do(r, http.MethodPost, "/api/donations", gin.H{"amount": 1999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.rows)
}

func TestDonations_ConfirmNeedsReceipt(t *testing.T) {
	r, store := setup(t, &payment.StubGateway{})
	w := do(r, http.MethodPost, "/api/donations", gin.H{"amount": 50000, "orderCode": 12345, "receiptToken": "bogus"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, store.rows)
}

func TestDonations_ConfirmPending(t *testing.T) {
	r, store := setup(t, &payment.StubGateway{})
	w := do(r, http.MethodPost, "/api/payos/create-payment", gin.H{"amount": 50000, "name": "Bao"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode(t, w)

	w = do(r, http.MethodPost, "/api/donations", gin.H{
		"amount":       50000,
		"orderCode":    created["orderCode"],
		"receiptToken": created["receiptToken"],
	})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, true, decode(t, w)["pending"])
	assert.Empty(t, store.rows)
}

func TestStats(t *testing.T) {
	r, _ := setup(t, &payment.StubGateway{})
	do(r, http.MethodPost, "/api/donations", gin.H{"amount": 2000})
	do(r, http.MethodPost, "/api/donations", gin.H{"amount": 50000})

	w := do(r, http.MethodGet, "/api/donations/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(52000), body["totalAmount"])
	assert.Equal(t, float64(2), body["donationCount"])
	assert.Equal(t, float64(10000000), body["monthlyGoal"])
	assert.Equal(t, float64(26000), body["averageDonation"])
	assert.Equal(t, "52.000đ", body["formattedTotal"])
}

func TestExpenses(t *testing.T) {
	r, _ := setup(t, &payment.StubGateway{})
	w := do(r, http.MethodGet, "/api/expenses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["categories"], 6)
	assert.Equal(t, float64(33), body["spendingPercentage"])
}
