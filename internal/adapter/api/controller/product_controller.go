package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/service/products"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

// ProductController handles the stock table endpoints
type ProductController struct {
	products *products.Service
	logger   logger.Logger
}

// NewProductController creates a ProductController
func NewProductController(svc *products.Service, log logger.Logger) *ProductController {
	return &ProductController{products: svc, logger: log}
}

// Create registers a product
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param product body dto.ProductRequest true "Product"
// @Success 201 {object} products.ProductDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req dto.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	out, err := c.products.Create(ctx.Request.Context(), caller(ctx), in)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// Get returns one product
// @Summary Get product
// @Tags products
// @Produce json
// @Security Bearer
// @Param id path string true "Product id"
// @Success 200 {object} products.ProductDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /products/{id} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	out, err := c.products.Get(ctx.Request.Context(), caller(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// List returns products
// @Summary List products
// @Tags products
// @Produce json
// @Security Bearer
// @Param search query string false "Matches name or code"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} products.ProductDTO
// @Router /products [get]
func (c *ProductController) List(ctx *gin.Context) {
	var p dto.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	filter := product.ListFilter{Search: ctx.Query("search"), Limit: p.Limit, Offset: p.Offset}
	out, err := c.products.List(ctx.Request.Context(), caller(ctx), filter)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// AdjustStock applies a manual stock correction
// @Summary Adjust stock
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Product id"
// @Param adjustment body dto.StockAdjustmentRequest true "Delta"
// @Success 200 {object} products.ProductDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /products/{id}/stock [post]
func (c *ProductController) AdjustStock(ctx *gin.Context) {
	var req dto.StockAdjustmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	out, err := c.products.AdjustStock(ctx.Request.Context(), caller(ctx), ctx.Param("id"), req.Delta, req.Note)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Movements returns the stock ledger of a product
// @Summary Stock movements
// @Tags products
// @Produce json
// @Security Bearer
// @Param id path string true "Product id"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} product.Movement
// @Router /products/{id}/movements [get]
func (c *ProductController) Movements(ctx *gin.Context) {
	limit, err := queryInt(ctx, "limit", 50)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	out, err := c.products.Movements(ctx.Request.Context(), caller(ctx), ctx.Param("id"), limit)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}
