// internal/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// POST /invoices
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	var req services.GenerateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.GenerateInvoice(c.Request.Context(), accountID, &req)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInvoiceCreated),
		"invoice": invoice,
	})
}

// GET /invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), accountID, params)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	result := utils.CreatePaginationResult(invoices, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"invoice": invoice})
}

// PUT /invoices/:id/delivered
func (h *InvoiceHandler) MarkDelivered(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.MarkInvoiceDelivered(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInvoiceDelivered),
		"invoice": invoice,
	})
}

// GET /orderInvoice/:orderId
func (h *InvoiceHandler) DownloadOrderInvoice(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	orderID, ok := parseUUIDParam(c, "orderId", "order")
	if !ok {
		return
	}

	pdf, filename, err := h.invoiceService.RenderOrderInvoicePDF(c.Request.Context(), accountID, orderID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
