package handler

import (
	"errors"
	"net/http"
	"strconv"

	"nuoitoi/internal/domain"
	"nuoitoi/internal/service"

	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	svc *service.DonationService
}

func NewDonationHandler(svc *service.DonationService) *DonationHandler {
	return &DonationHandler{svc: svc}
}

func (h *DonationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	c.JSON(http.StatusOK, h.svc.ListRecent(c.Request.Context(), limit))
}

func (h *DonationHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context()))
}

type recordDonationRequest struct {
	Amount       int64  `json:"amount"`
	Name         string `json:"name"`
	Message      string `json:"message"`
	OrderCode    int64  `json:"orderCode"`
	ReceiptToken string `json:"receiptToken"`
}

// Record stores a manual donation, or confirms a QR payment when orderCode is given.
func (h *DonationHandler) Record(c *gin.Context) {
	var req recordDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MsgMinAmount})
		return
	}
	res, err := h.svc.RecordDonation(c.Request.Context(), service.RecordInput{
		Amount:       req.Amount,
		Name:         req.Name,
		Message:      req.Message,
		OrderCode:    req.OrderCode,
		ReceiptToken: req.ReceiptToken,
	})
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MsgMinAmount})
		return
	case errors.Is(err, domain.ErrReceiptInvalid):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid receipt"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.MsgRecordErr})
		return
	}
	if res.Pending {
		c.JSON(http.StatusAccepted, gin.H{"success": true, "pending": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "donation": res.Donation})
}
