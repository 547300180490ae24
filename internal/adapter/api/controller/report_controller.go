package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/internal/service/orders"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

// ReportController handles the order report endpoints
type ReportController struct {
	orders *orders.Service
	logger logger.Logger
}

// NewReportController creates a ReportController
func NewReportController(svc *orders.Service, log logger.Logger) *ReportController {
	return &ReportController{orders: svc, logger: log}
}

// Summary counts orders by status and document type
// @Summary Order summary
// @Tags reports
// @Produce json
// @Security Bearer
// @Success 200 {object} orders.SummaryDTO
// @Router /orders/reports/summary [get]
func (c *ReportController) Summary(ctx *gin.Context) {
	out, err := c.orders.Summary(ctx.Request.Context(), caller(ctx))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Totals returns absolute totals and balances
// @Summary Totals summary
// @Tags reports
// @Produce json
// @Security Bearer
// @Success 200 {object} orders.TotalsDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /orders/reports/totals [get]
func (c *ReportController) Totals(ctx *gin.Context) {
	out, err := c.orders.TotalsSummary(ctx.Request.Context(), caller(ctx))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Overdue lists orders past their delivery date
// @Summary Overdue orders
// @Tags reports
// @Produce json
// @Security Bearer
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} orders.OrderPage
// @Router /orders/reports/overdue [get]
func (c *ReportController) Overdue(ctx *gin.Context) {
	var p dto.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	out, err := c.orders.Overdue(ctx.Request.Context(), caller(ctx), p.Limit, p.Offset)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Upcoming lists orders due within the horizon
// @Summary Upcoming deliveries
// @Tags reports
// @Produce json
// @Security Bearer
// @Param days query int false "Horizon in days"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} orders.OrderPage
// @Router /orders/reports/upcoming [get]
func (c *ReportController) Upcoming(ctx *gin.Context) {
	var p dto.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	days, err := queryInt(ctx, "days", 0)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	out, err := c.orders.UpcomingDeliveries(ctx.Request.Context(), caller(ctx), days, p.Limit, p.Offset)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// ByStatus returns a per-status rollup, or one status' orders
// @Summary Orders by status
// @Tags reports
// @Produce json
// @Security Bearer
// @Param status query string false "Status; empty for the rollup"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} orders.ByStatusDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /orders/reports/by-status [get]
func (c *ReportController) ByStatus(ctx *gin.Context) {
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
	out, err := c.orders.ByStatus(ctx.Request.Context(), caller(ctx), query.Status, query.Limit, query.Offset)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Monthly returns order counts and totals per month
// @Summary Monthly statistics
// @Tags reports
// @Produce json
// @Security Bearer
// @Param months query int false "Number of months"
// @Success 200 {array} orders.MonthlyStatDTO
// @Router /orders/reports/monthly [get]
func (c *ReportController) Monthly(ctx *gin.Context) {
	months, err := queryInt(ctx, "months", 0)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	out, err := c.orders.MonthlyStats(ctx.Request.Context(), caller(ctx), months)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}
