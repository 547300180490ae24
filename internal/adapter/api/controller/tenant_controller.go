package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/internal/service/tenants"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/hugohenrick/arte-ideas/pkg/tenant"
)

// TenantController handles the tenant endpoints. Only super-admins pass
// the policy.
type TenantController struct {
	tenants *tenants.Service
	logger  logger.Logger
}

// NewTenantController creates a TenantController
func NewTenantController(svc *tenants.Service, log logger.Logger) *TenantController {
	return &TenantController{tenants: svc, logger: log}
}

// Create registers a tenant
// @Summary Create tenant
// @Tags tenants
// @Accept json
// @Produce json
// @Security Bearer
// @Param tenant body dto.TenantRequest true "Tenant"
// @Success 201 {object} tenant.Tenant
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /tenants [post]
func (c *TenantController) Create(ctx *gin.Context) {
	var req dto.TenantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	out, err := c.tenants.Create(ctx.Request.Context(), caller(ctx), in)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// Get returns a tenant by id or slug
// @Summary Get tenant
// @Tags tenants
// @Produce json
// @Security Bearer
// @Param tenantID path string true "Tenant id or slug"
// @Success 200 {object} tenant.Tenant
// @Failure 404 {object} dto.ErrorResponse
// @Router /tenants/{tenantID} [get]
func (c *TenantController) Get(ctx *gin.Context) {
	out, err := c.tenants.Get(ctx.Request.Context(), caller(ctx), ctx.Param(tenant.PathParam))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// List returns tenants
// @Summary List tenants
// @Tags tenants
// @Produce json
// @Security Bearer
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} tenant.Tenant
// @Router /tenants [get]
func (c *TenantController) List(ctx *gin.Context) {
	var p dto.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	out, err := c.tenants.List(ctx.Request.Context(), caller(ctx), p.Limit, p.Offset)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// SetStatus activates or deactivates a tenant
// @Summary Change tenant status
// @Tags tenants
// @Accept json
// @Produce json
// @Security Bearer
// @Param tenantID path string true "Tenant id"
// @Param status body dto.TenantStatusRequest true "Status"
// @Success 200 {object} tenant.Tenant
// @Router /tenants/{tenantID}/status [patch]
func (c *TenantController) SetStatus(ctx *gin.Context) {
	var req dto.TenantStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	out, err := c.tenants.SetActive(ctx.Request.Context(), caller(ctx), ctx.Param(tenant.PathParam), req.Active)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}
