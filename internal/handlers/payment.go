// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /invoices/:id/payment
func (h *PaymentHandler) CreateInvoicePayment(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id", "invoice")
	if !ok {
		return
	}

	response, err := h.paymentService.CreateInvoicePayment(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /invoices/:id/payment/confirm
func (h *PaymentHandler) ConfirmInvoicePayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id", "invoice")
	if !ok {
		return
	}

	confirmation, err := h.paymentService.ConfirmInvoicePayment(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	message := i18n.T(lang, i18n.KeyPaymentPending)
	switch {
	case confirmation.Invoice.PaymentStatus == models.PaymentStatusPaid:
		message = i18n.T(lang, i18n.KeyPaymentSuccess)
	case confirmation.Status == "canceled" || confirmation.Status == "requires_payment_method":
		message = i18n.T(lang, i18n.KeyPaymentFailed)
	}

	utils.SuccessResponse(c, gin.H{
		"message": message,
		"status":  confirmation.Status,
		"invoice": confirmation.Invoice,
	})
}
