// Package paymenttest builds signed PayOS payloads for tests.
package paymenttest

import (
	"encoding/json"

	"nuoitoi/pkg/payment"
)

// WebhookData mirrors the data object of a PayOS settlement notification.
type WebhookData struct {
	OrderCode            int64   `json:"orderCode"`
	Amount               int64   `json:"amount"`
	Description          string  `json:"description"`
	AccountNumber        string  `json:"accountNumber"`
	Reference            string  `json:"reference"`
	TransactionDateTime  string  `json:"transactionDateTime"`
	Currency             string  `json:"currency"`
	PaymentLinkID        string  `json:"paymentLinkId"`
	Code                 string  `json:"code"`
	Desc                 string  `json:"desc"`
	CounterAccountBankID *string `json:"counterAccountBankId"`
	CounterAccountName   *string `json:"counterAccountName"`
	CounterAccountNumber *string `json:"counterAccountNumber"`
}

// Envelope wraps data the way PayOS does and signs it with checksumKey.
func Envelope(checksumKey string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	sig, err := payment.SignData(checksumKey, raw)
	if err != nil {
		panic(err)
	}
	out, _ := json.Marshal(map[string]interface{}{
		"code":      "00",
		"desc":      "success",
		"success":   true,
		"data":      json.RawMessage(raw),
		"signature": sig,
	})
	return out
}

// Webhook returns a signed settlement notification for orderCode.
func Webhook(checksumKey string, orderCode, amount int64, code string, counterName *string) []byte {
	return Envelope(checksumKey, WebhookData{
		OrderCode:           orderCode,
		Amount:              amount,
		Description:         "NUOITOI",
		AccountNumber:       "12345678",
		Reference:           "FT0001",
		TransactionDateTime: "2026-10-19 10:00:00",
		Currency:            "VND",
		PaymentLinkID:       "link",
		Code:                code,
		Desc:                "success",
		CounterAccountName:  counterName,
	})
}
