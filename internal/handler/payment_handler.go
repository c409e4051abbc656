package handler

import (
	"errors"
	"net/http"
	"strconv"

	"nuoitoi/internal/domain"
	"nuoitoi/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc *service.DonationService
}

func NewPaymentHandler(svc *service.DonationService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type createPaymentRequest struct {
	Amount  int64  `json:"amount"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Create registers a QR payment and returns the code to scan.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MsgMinAmount})
		return
	}
	res, err := h.svc.CreatePayment(c.Request.Context(), service.CreatePaymentInput{
		Amount:  req.Amount,
		Name:    req.Name,
		Message: req.Message,
		Origin:  c.GetHeader("Origin"),
	})
	if errors.Is(err, domain.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MsgMinAmount})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.MsgCreatePaymentErr})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Status is polled by the payment dialog every few seconds.
func (h *PaymentHandler) Status(c *gin.Context) {
	orderCode, err := strconv.ParseInt(c.Param("orderCode"), 10, 64)
	if err != nil || orderCode <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MsgInvalidOrderCode})
		return
	}
	res, err := h.svc.PaymentStatus(c.Request.Context(), orderCode)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.MsgStatusErr})
		return
	}
	c.JSON(http.StatusOK, res)
}
