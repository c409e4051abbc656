package handler

import (
	"net/http"

	"nuoitoi/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	svc *service.DonationService
}

func NewExpenseHandler(svc *service.DonationService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Expenses(c.Request.Context()))
}
