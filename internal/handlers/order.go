// internal/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

const idempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

type placeOrderRequest struct {
	UserID string `json:"userId"`
	services.PlaceOrderRequest
}

// POST /addOrder
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req placeOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if !matchAccount(c, req.UserID, "userId") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), accountID, &req.PlaceOrderRequest, c.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(c, err, statusOverrides{services.ErrAccountNotFound: http.StatusBadRequest})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
		"order":   order,
	})
}

// GET /orders/:userId
func (h *OrderHandler) ListOrders(c *gin.Context) {
	if !matchAccount(c, c.Param("userId"), "userId") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// DELETE /deleteOrder/:orderId
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	orderID, ok := parseUUIDParam(c, "orderId", "order")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), accountID, orderID); err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderDeleted),
	})
}

// PATCH /orders/:orderId/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	orderID, ok := parseUUIDParam(c, "orderId", "order")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), accountID, orderID, req.Status)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderStatusUpdated),
		"order":   order,
	})
}

// POST /orders/reconcile
func (h *OrderHandler) ReconcileOrders(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	report, err := h.orderService.ReconcileOrders(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"report": report})
}
