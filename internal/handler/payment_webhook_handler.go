package handler

import (
	"io"
	"net/http"

	"nuoitoi/internal/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentWebhookHandler struct {
	svc *service.DonationService
}

func NewPaymentWebhookHandler(svc *service.DonationService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{svc: svc}
}

// Handle always answers 200 so the provider does not retry; failures are logged by the service.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err == nil {
		_, _ = h.svc.HandleWebhook(c.Request.Context(), body)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
