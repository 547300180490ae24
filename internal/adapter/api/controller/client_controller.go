package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/service/clients"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

// ClientController handles the client endpoints
type ClientController struct {
	clients *clients.Service
	logger  logger.Logger
}

// NewClientController creates a ClientController
func NewClientController(svc *clients.Service, log logger.Logger) *ClientController {
	return &ClientController{clients: svc, logger: log}
}

// Create registers a client
// @Summary Create client
// @Tags clients
// @Accept json
// @Produce json
// @Security Bearer
// @Param client body dto.ClientRequest true "Client"
// @Success 201 {object} client.Client
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /clients [post]
func (c *ClientController) Create(ctx *gin.Context) {
	var req dto.ClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	out, err := c.clients.Create(ctx.Request.Context(), caller(ctx), req.ToInput())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// Get returns one client
// @Summary Get client
// @Tags clients
// @Produce json
// @Security Bearer
// @Param id path string true "Client id"
// @Success 200 {object} client.Client
// @Failure 404 {object} dto.ErrorResponse
// @Router /clients/{id} [get]
func (c *ClientController) Get(ctx *gin.Context) {
	out, err := c.clients.Get(ctx.Request.Context(), caller(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// List returns clients, optionally filtered
// @Summary List clients
// @Tags clients
// @Produce json
// @Security Bearer
// @Param type query string false "individual, school or company"
// @Param search query string false "Matches name, DNI or RUC"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} client.Client
// @Router /clients [get]
func (c *ClientController) List(ctx *gin.Context) {
	var p dto.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	filter := client.ListFilter{
		Type:   client.Type(ctx.Query("type")),
		Search: ctx.Query("search"),
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	out, err := c.clients.List(ctx.Request.Context(), caller(ctx), filter)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Update changes contact fields
// @Summary Update client
// @Tags clients
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Client id"
// @Param client body dto.UpdateClientRequest true "Fields to change"
// @Success 200 {object} client.Client
// @Failure 400 {object} dto.ErrorResponse
// @Router /clients/{id} [patch]
func (c *ClientController) Update(ctx *gin.Context) {
	var req dto.UpdateClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, c.logger, err)
		return
	}
	out, err := c.clients.Update(ctx.Request.Context(), caller(ctx), ctx.Param("id"), req.ToPatch())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}
