package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/internal/service/orders"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

// OrderController handles the order endpoints
type OrderController struct {
	orders *orders.Service
	logger logger.Logger
}

// NewOrderController creates an OrderController
func NewOrderController(svc *orders.Service, log logger.Logger) *OrderController {
	return &OrderController{orders: svc, logger: log}
}

// Create opens an order
// @Summary Create order
// @Description Creates an order with its items and an optional initial payment. Sale-notes debit stock.
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param X-Tenant-ID header string false "Tenant id or slug"
// @Param Idempotency-Key header string false "Deduplication key"
// @Param order body dto.CreateOrderRequest true "Order"
// @Success 201 {object} orders.OrderDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders [post]
func (c *OrderController) Create(ctx *gin.Context) {
	var req dto.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	cmd, err := req.ToCommand(ctx.GetHeader(IdempotencyHeader))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.orders.CreateOrder(ctx.Request.Context(), caller(ctx), cmd)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// Get returns one order
// @Summary Get order
// @Tags orders
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Success 200 {object} orders.OrderDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /orders/{id} [get]
func (c *OrderController) Get(ctx *gin.Context) {
	out, err := c.orders.GetOrder(ctx.Request.Context(), caller(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// List returns a page of orders
// @Summary List orders
// @Tags orders
// @Produce json
// @Security Bearer
// @Param status query string false "Status, overdue included"
// @Param document_type query string false "Document type"
// @Param client_id query string false "Client id"
// @Param delivery_from query string false "YYYY-MM-DD"
// @Param delivery_to query string false "YYYY-MM-DD"
// @Param sort query string false "newest, delivery_asc, delivery_desc or number_asc"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} orders.OrderPage
// @Failure 400 {object} dto.ErrorResponse
// @Router /orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	var q dto.OrderQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	query, err := q.ToQuery()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	page, err := c.orders.ListOrders(ctx.Request.Context(), caller(ctx), query)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// Update changes header fields
// @Summary Update order header
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Param order body dto.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} orders.OrderDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders/{id} [patch]
func (c *OrderController) Update(ctx *gin.Context) {
	var req dto.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.orders.UpdateOrder(ctx.Request.Context(), caller(ctx), ctx.Param("id"), patch)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Delete removes an order without payments
// @Summary Delete order
// @Tags orders
// @Security Bearer
// @Param id path string true "Order id"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /orders/{id} [delete]
func (c *OrderController) Delete(ctx *gin.Context) {
	if err := c.orders.DeleteOrder(ctx.Request.Context(), caller(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddItem appends a line
// @Summary Add order item
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Param item body dto.ItemRequest true "Item"
// @Success 201 {object} orders.OrderDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders/{id}/items [post]
func (c *OrderController) AddItem(ctx *gin.Context) {
	var req dto.ItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.orders.AddItem(ctx.Request.Context(), caller(ctx), ctx.Param("id"), in)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// UpdateItem changes a line
// @Summary Update order item
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Param itemId path string true "Item id"
// @Param item body dto.UpdateItemRequest true "Fields to change"
// @Success 200 {object} orders.OrderDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders/{id}/items/{itemId} [patch]
func (c *OrderController) UpdateItem(ctx *gin.Context) {
	var req dto.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.orders.UpdateItem(ctx.Request.Context(), caller(ctx), ctx.Param("id"), ctx.Param("itemId"), patch)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// RemoveItem deletes a line
// @Summary Remove order item
// @Tags orders
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Param itemId path string true "Item id"
// @Success 200 {object} orders.OrderDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders/{id}/items/{itemId} [delete]
func (c *OrderController) RemoveItem(ctx *gin.Context) {
	out, err := c.orders.RemoveItem(ctx.Request.Context(), caller(ctx), ctx.Param("id"), ctx.Param("itemId"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// RegisterPayment appends a payment
// @Summary Register payment
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Param Idempotency-Key header string false "Deduplication key"
// @Param payment body dto.PaymentRequest true "Payment"
// @Success 201 {object} orders.OrderDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders/{id}/payments [post]
func (c *OrderController) RegisterPayment(ctx *gin.Context) {
	var req dto.PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	cmd, err := req.ToCommand(ctx.Param("id"), ctx.GetHeader(IdempotencyHeader))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.orders.RegisterPayment(ctx.Request.Context(), caller(ctx), cmd)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// ListPayments returns the payment ledger of an order
// @Summary List payments
// @Tags orders
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Success 200 {array} orders.PaymentDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /orders/{id}/payments [get]
func (c *OrderController) ListPayments(ctx *gin.Context) {
	out, err := c.orders.ListPayments(ctx.Request.Context(), caller(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// UpdatePayment always fails: payments are append-only
// @Summary Update payment
// @Tags orders
// @Security Bearer
// @Param id path string true "Order id"
// @Param paymentId path string true "Payment id"
// @Failure 409 {object} dto.ErrorResponse
// @Router /orders/{id}/payments/{paymentId} [put]
func (c *OrderController) UpdatePayment(ctx *gin.Context) {
	err := c.orders.UpdatePayment(ctx.Request.Context(), caller(ctx), ctx.Param("id"), ctx.Param("paymentId"))
	respondError(ctx, c.logger, err)
}

// Transition moves an order to another status
// @Summary Change order status
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Param transition body dto.TransitionRequest true "Target status"
// @Success 200 {object} orders.OrderDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /orders/{id}/transitions [post]
func (c *OrderController) Transition(ctx *gin.Context) {
	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	cmd, err := req.ToCommand(ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.orders.Transition(ctx.Request.Context(), caller(ctx), cmd)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// History returns the status history of an order
// @Summary Status history
// @Tags orders
// @Produce json
// @Security Bearer
// @Param id path string true "Order id"
// @Success 200 {array} orders.HistoryDTO
// @Router /orders/{id}/history [get]
func (c *OrderController) History(ctx *gin.Context) {
	out, err := c.orders.ListHistory(ctx.Request.Context(), caller(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}
